package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode" validate:"oneof=debug release test"`
	Port       int           `mapstructure:"port" validate:"min=1,max=65535"`
	StaticPath string        `mapstructure:"static_path"`
	LogLevel   string        `mapstructure:"log_level"`
	ReadLimit  int64         `mapstructure:"read_limit" validate:"min=512"`
	PingPeriod time.Duration `mapstructure:"ping_period" validate:"min=1s"`
	Secret     string        `mapstructure:"secret" validate:"required,min=16"`

	Auth     AuthConfig     `mapstructure:"auth"`
	Store    StoreConfig    `mapstructure:"store"`
	Presence PresenceConfig `mapstructure:"presence"`
	Meeting  MeetingConfig  `mapstructure:"meeting"`
	Signal   SignalConfig   `mapstructure:"signal"`
	RTC      RTCConfig      `mapstructure:"rtc"`
}

// AuthConfig describes how externally issued identity tokens are verified.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	Issuer    string        `mapstructure:"issuer"`
	Audience  string        `mapstructure:"audience"`
	Leeway    time.Duration `mapstructure:"leeway"`
}

type StoreConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=memory postgres"`
	DSN      string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
	MaxConns int32  `mapstructure:"max_conns" validate:"min=1"`
	Migrate  bool   `mapstructure:"migrate"`
}

type PresenceConfig struct {
	Driver        string `mapstructure:"driver" validate:"oneof=local redis"`
	RedisAddr     string `mapstructure:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"min=0"`
}

type MeetingConfig struct {
	CodeLength int      `mapstructure:"code_length" validate:"min=4,max=32"`
	Reserved   []string `mapstructure:"reserved"`
}

type SignalConfig struct {
	JoinLimit    int           `mapstructure:"join_limit" validate:"min=1"`
	JoinInterval time.Duration `mapstructure:"join_interval" validate:"min=1ms"`
	SendBuffer   int           `mapstructure:"send_buffer" validate:"min=1"`
}

type RTCConfig struct {
	ICEServers []string `mapstructure:"ice_servers"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("log_level", "info")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("auth.leeway", "30s")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.migrate", true)

	v.SetDefault("presence.driver", "local")
	v.SetDefault("presence.redis_addr", "")
	v.SetDefault("presence.redis_password", "")
	v.SetDefault("presence.redis_db", 0)

	v.SetDefault("meeting.code_length", 10)
	v.SetDefault("meeting.reserved", []string{"DASHBOARD", "LOGIN", "SIGNUP", "AUTH", "MEETING", "API", "STATIC"})

	v.SetDefault("signal.join_limit", 5)
	v.SetDefault("signal.join_interval", "10s")
	v.SetDefault("signal.send_buffer", 32)

	v.SetDefault("rtc.ice_servers", []string{"stun:stun.l.google.com:19302"})
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("BEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads config/config.<CONFIG_ENV>.yaml (dev by default), then BEET_* environment overrides.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("store", cfg.Store.Driver).Str("presence", cfg.Presence.Driver).Msg("config ready")
	return &cfg, nil
}
