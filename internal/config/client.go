package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
)

// ClientConfig drives the headless participant.
type ClientConfig struct {
	ServerURL    string        `mapstructure:"server" validate:"required,url"`
	Token        string        `mapstructure:"token" validate:"required"`
	Code         string        `mapstructure:"code" validate:"required_without=Create"`
	Create       bool          `mapstructure:"create"`
	Title        string        `mapstructure:"title"`
	Camera       bool          `mapstructure:"camera"`
	Microphone   bool          `mapstructure:"microphone"`
	Display      bool          `mapstructure:"display"`
	LeaveTimeout time.Duration `mapstructure:"leave_timeout" validate:"min=1ms"`
	LogLevel     string        `mapstructure:"log_level"`
	ICEServers   []string      `mapstructure:"ice_servers"`
}

// LoadClient parses args and overlays BEET_* environment variables.
func LoadClient(args []string) (*ClientConfig, error) {
	fs := pflag.NewFlagSet("participant", pflag.ContinueOnError)
	fs.String("server", "http://localhost:8080", "meeting server base URL")
	fs.String("token", "", "identity access token")
	fs.String("code", "", "meeting code to join")
	fs.Bool("create", false, "create a new meeting before joining")
	fs.String("title", "", "title for a created meeting")
	fs.Bool("camera", true, "allow camera capture")
	fs.Bool("microphone", true, "allow microphone capture")
	fs.Bool("display", true, "allow display capture")
	fs.Duration("leave_timeout", 5*time.Second, "upper bound for the leave timestamp update")
	fs.String("log_level", "info", "log level")
	fs.StringSlice("ice_servers", []string{"stun:stun.l.google.com:19302"}, "ICE server URLs")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := newViper()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	var cfg ClientConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse client config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	return &cfg, nil
}
