// Package meeting runs the participant side of a meeting: entering,
// local media controls, the remote roster and teardown.
package meeting

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/app"
	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// Bootstrapper turns a meeting code into a running Session.
type Bootstrapper struct {
	Identity  core.IdentityProvider
	Meetings  *app.MeetingService
	Devices   core.MediaDevices
	Peers     core.PeerFactory
	Navigator core.Navigator

	LeaveTimeout time.Duration
}

// Enter resolves the caller, loads the active meeting for code, records
// participation and acquires camera and microphone.
//
// Anonymous callers are sent to the login page before any lookup. A capture
// failure does not fail Enter: the session comes back degraded with
// MediaErr set.
func (b *Bootstrapper) Enter(ctx context.Context, code string) (*Session, error) {
	who, err := b.Identity.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if who == nil {
		navigate(b.Navigator, domain.RouteLogin)
		return nil, domain.ErrAuthenticationRequired
	}

	m, err := b.Meetings.FindActive(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, err := b.Meetings.Join(ctx, m.ID, who); err != nil {
		return nil, err
	}

	s := &Session{
		Identity:     who,
		Meeting:      m,
		Media:        NewLocalMedia(b.Devices),
		Roster:       NewRoster(who.ID, b.Peers),
		meetings:     b.Meetings,
		nav:          b.Navigator,
		leaveTimeout: b.LeaveTimeout,
		done:         make(chan struct{}),
	}
	if err := s.Media.Start(ctx); err != nil {
		s.mediaErr = err
		log.Warn().Err(err).Str("module", "meeting.bootstrap").Str("code", string(m.Code)).Msg("continuing without local media")
	}
	log.Info().Str("module", "meeting.bootstrap").Str("code", string(m.Code)).Str("identity", string(who.ID)).Msg("entered meeting")
	return s, nil
}
