package meeting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/app"
	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// DefaultLeaveTimeout bounds the departure write during teardown.
const DefaultLeaveTimeout = 5 * time.Second

// Session is one identity's stay in one meeting.
type Session struct {
	Identity *domain.Identity
	Meeting  *domain.Meeting
	Media    *LocalMedia
	Roster   *Roster

	meetings     *app.MeetingService
	nav          core.Navigator
	leaveTimeout time.Duration
	mediaErr     error

	mu    sync.Mutex
	hooks []func()
	once  sync.Once
	done  chan struct{}
}

// MediaErr is the capture failure the session started with, if any.
func (s *Session) MediaErr() error { return s.mediaErr }

// Degraded reports whether the session runs without local media.
func (s *Session) Degraded() bool { return s.mediaErr != nil }

// ErrorMessage is the inline message for MediaErr.
func (s *Session) ErrorMessage() string { return domain.UserMessage(s.mediaErr) }

// OnLeave registers fn to run during teardown, after local media is released.
func (s *Session) OnLeave(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Done is closed once teardown has finished.
func (s *Session) Done() <-chan struct{} { return s.done }

// Leave tears the session down. Local tracks and peer handles are released
// first and unconditionally; the departure write is best effort and bounded.
// Safe to call more than once.
func (s *Session) Leave(ctx context.Context) {
	s.once.Do(func() {
		defer close(s.done)

		s.Media.Stop()
		s.Roster.CloseAll()

		s.mu.Lock()
		hooks := s.hooks
		s.hooks = nil
		s.mu.Unlock()
		for _, fn := range hooks {
			fn()
		}

		if s.Identity != nil && s.Meeting != nil && s.meetings != nil {
			s.markLeft(ctx)
		}
		navigate(s.nav, domain.RouteDashboard)
		log.Info().Str("module", "meeting.session").Msg("left meeting")
	})
}

func (s *Session) markLeft(ctx context.Context) {
	timeout := s.leaveTimeout
	if timeout <= 0 {
		timeout = DefaultLeaveTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.meetings.Leave(ctx, s.Meeting.ID, s.Identity); err != nil {
		log.Warn().Err(errors.Join(domain.ErrTeardownNetwork, err)).
			Str("module", "meeting.session").
			Str("meeting", string(s.Meeting.ID)).
			Msg("could not record departure")
	}
}

// Close is Leave for unmount paths without a context.
func (s *Session) Close() error {
	s.Leave(context.Background())
	return nil
}

// Sync and Apply feed the roster from the presence channel.
func (s *Session) Sync(members []core.MemberDTO) { s.Roster.Sync(members) }

func (s *Session) Apply(ev core.PresenceEvent) { s.Roster.Apply(ev) }

// MeetingEnded tears the session down when the host ends the meeting.
func (s *Session) MeetingEnded(code domain.MeetingCode) {
	if s.Meeting == nil || code != s.Meeting.Code {
		return
	}
	log.Info().Str("module", "meeting.session").Str("code", string(code)).Msg("meeting ended by host")
	s.Leave(context.Background())
}

func navigate(n core.Navigator, r domain.Route) {
	if n != nil {
		n.Navigate(r)
	}
}
