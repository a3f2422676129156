// Command participant joins a meeting as a headless participant. It captures
// synthetic media, follows presence and accepts one-letter commands on stdin:
// a toggles audio, v video, s screen share, x ends the display capture,
// p lists participants and q leaves.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/adapters/apiclient"
	"github.com/semitha-uni-west/google-beet/internal/adapters/rtc"
	beetsignal "github.com/semitha-uni-west/google-beet/internal/adapters/signal"
	"github.com/semitha-uni-west/google-beet/internal/app"
	"github.com/semitha-uni-west/google-beet/internal/app/meeting"
	"github.com/semitha-uni-west/google-beet/internal/config"
	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

const framePeriod = 20 * time.Millisecond

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.LoadClient(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load participant config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, domain.UserMessage(err))
		log.Error().Err(err).Msg("participant stopped")
		os.Exit(1)
	}
}

func navigator() core.Navigator {
	return core.NavigatorFunc(func(r domain.Route) {
		log.Info().Str("module", "participant").Str("route", string(r)).Msg("navigate")
	})
}

func run(ctx context.Context, cfg *config.ClientConfig) error {
	client := apiclient.New(cfg.ServerURL, cfg.Token, 10*time.Second)
	identity := apiclient.NewIdentity(client)
	meetings := app.NewMeetingService(apiclient.NewStore(client), domain.NewCodeGenerator(domain.GeneratedCodeLen, domain.DefaultReservedCodes))

	code := cfg.Code
	if cfg.Create {
		d := &meeting.Dashboard{Identity: identity, Meetings: meetings, Navigator: navigator()}
		m, err := d.CreateMeeting(ctx, cfg.Title, cfg.Code)
		if err != nil {
			return err
		}
		code = string(m.Code)
		fmt.Printf("created meeting %s (%s)\n", m.Code, m.Title)
	}

	devices := &rtc.Devices{Camera: cfg.Camera, Microphone: cfg.Microphone, Display: cfg.Display}
	peers := rtc.NewPeerFactory(cfg.ICEServers)
	boot := &meeting.Bootstrapper{
		Identity:     identity,
		Meetings:     meetings,
		Devices:      devices,
		Peers:        peers,
		Navigator:    navigator(),
		LeaveTimeout: cfg.LeaveTimeout,
	}

	sess, err := boot.Enter(ctx, code)
	if err != nil {
		return err
	}
	defer sess.Close()
	if sess.Degraded() {
		fmt.Println(sess.ErrorMessage())
	}
	peers.Tracks = func() []webrtc.TrackLocal { return localSamples(sess.Media) }

	sess.Media.Subscribe(func(st meeting.MediaState) {
		log.Info().Str("module", "participant").
			Bool("audio", st.AudioEnabled).Bool("video", st.VideoEnabled).
			Bool("sharing", st.Sharing).Str("preview", st.Preview.String()).
			Msg("media state")
	})
	if s := sess.Media.Preview(); s != nil {
		go rtc.Pump(ctx, s, framePeriod)
	}

	sig, err := beetsignal.Dial(ctx, cfg.ServerURL, client.Token(), sess)
	if err != nil {
		return err
	}
	sess.OnLeave(func() {
		_ = sig.Leave()
		_ = sig.Close()
	})

	joinCtx, joinCancel := context.WithTimeout(ctx, 10*time.Second)
	state, err := sig.Join(joinCtx, sess.Meeting.Code)
	joinCancel()
	if err != nil {
		return err
	}
	fmt.Printf("in %s (%s) with %d member(s)\n", state.Meeting, state.Title, state.Count)

	commands := make(chan string)
	go readCommands(commands)

	for {
		select {
		case <-ctx.Done():
			sess.Leave(context.Background())
			return nil
		case <-sess.Done():
			return nil
		case <-sig.Done():
			sess.Leave(context.Background())
			return nil
		case cmd, ok := <-commands:
			if !ok {
				sess.Leave(ctx)
				return nil
			}
			if handle(ctx, sess, devices, cmd) {
				return nil
			}
		}
	}
}

// handle runs one stdin command and reports whether the session is over.
func handle(ctx context.Context, sess *meeting.Session, devices *rtc.Devices, cmd string) bool {
	switch cmd {
	case "a":
		fmt.Println("audio:", sess.Media.ToggleAudio())
	case "v":
		fmt.Println("video:", sess.Media.ToggleVideo())
	case "s":
		if err := sess.Media.ToggleScreenShare(ctx); err != nil {
			fmt.Println(domain.UserMessage(err))
		} else if s := sess.Media.Preview(); s != nil && sess.Media.State().Sharing {
			go rtc.Pump(ctx, s, framePeriod)
		}
	case "x":
		devices.EndDisplayCapture()
	case "p":
		for _, p := range sess.Roster.Snapshot() {
			fmt.Printf("  %s <%s>\n", p.ID, p.Email)
		}
	case "q":
		sess.Leave(ctx)
		return true
	case "":
	default:
		fmt.Println("commands: a v s x p q")
	}
	return false
}

func readCommands(out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		out <- strings.TrimSpace(sc.Text())
	}
	if err := sc.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		log.Warn().Err(err).Str("module", "participant").Msg("stdin")
	}
}

func localSamples(m *meeting.LocalMedia) []webrtc.TrackLocal {
	var out []webrtc.TrackLocal
	for _, t := range m.Tracks() {
		if lt, ok := t.(*rtc.LocalTrack); ok && !lt.Stopped() {
			out = append(out, lt.Sample())
		}
	}
	return out
}
