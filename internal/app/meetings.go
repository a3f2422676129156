package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// maxCodeAttempts bounds retries when a generated code is already taken.
const maxCodeAttempts = 5

// MeetingService is the server-side record workflow over a MeetingStore.
type MeetingService struct {
	Store core.MeetingStore
	Codes *domain.CodeGenerator
	Now   func() time.Time
}

func NewMeetingService(store core.MeetingStore, codes *domain.CodeGenerator) *MeetingService {
	return &MeetingService{Store: store, Codes: codes, Now: time.Now}
}

func (s *MeetingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Create inserts a meeting hosted by host. customCode may be empty, in which
// case a code is generated.
func (s *MeetingService) Create(ctx context.Context, host *domain.Identity, title, customCode string) (*domain.Meeting, error) {
	if host == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	if strings.TrimSpace(customCode) != "" {
		code, err := s.Codes.ParseCustom(customCode)
		if err != nil {
			return nil, err
		}
		return s.insert(ctx, code, title, host)
	}

	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.Codes.Generate()
		if err != nil {
			return nil, err
		}
		m, err := s.insert(ctx, code, title, host)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return nil, err
		}
		lastErr = err
		log.Warn().Str("module", "app.meetings").Str("code", string(code)).Int("attempt", attempt+1).Msg("generated code taken")
	}
	return nil, fmt.Errorf("no free meeting code after %d attempts: %w", maxCodeAttempts, lastErr)
}

func (s *MeetingService) insert(ctx context.Context, code domain.MeetingCode, title string, host *domain.Identity) (*domain.Meeting, error) {
	m, err := domain.NewMeeting(code, title, host.ID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Store.InsertMeeting(ctx, m); err != nil {
		return nil, err
	}
	log.Info().Str("module", "app.meetings").Str("code", string(m.Code)).Str("host", string(host.ID)).Msg("meeting created")
	return m, nil
}

// FindActive looks the code up case-insensitively.
func (s *MeetingService) FindActive(ctx context.Context, rawCode string) (*domain.Meeting, error) {
	code := domain.NormalizeCode(rawCode)
	if code == "" {
		return nil, domain.ErrCodeRequired
	}
	if err := code.Validate(); err != nil {
		return nil, domain.ErrNotFound
	}
	return s.Store.FindActiveMeeting(ctx, code)
}

// Join records participation. A duplicate is absorbed; joined reports whether
// a new record was written.
func (s *MeetingService) Join(ctx context.Context, meetingID domain.MeetingID, who *domain.Identity) (joined bool, err error) {
	if who == nil {
		return false, domain.ErrAuthenticationRequired
	}
	m, err := s.Store.FindMeeting(ctx, meetingID)
	if err != nil {
		return false, err
	}
	if !m.IsActive {
		return false, domain.ErrNotFound
	}
	err = s.Store.InsertParticipation(ctx, domain.NewParticipation(meetingID, who.ID, s.now()))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrConflict):
		log.Debug().Str("module", "app.meetings").Str("meeting", string(meetingID)).Str("identity", string(who.ID)).Msg("participation already recorded")
		return false, nil
	default:
		return false, err
	}
}

func (s *MeetingService) Leave(ctx context.Context, meetingID domain.MeetingID, who *domain.Identity) error {
	if who == nil {
		return domain.ErrAuthenticationRequired
	}
	return s.Store.MarkLeft(ctx, meetingID, who.ID, s.now())
}

// End deactivates the meeting. Only the host may end it.
func (s *MeetingService) End(ctx context.Context, rawCode string, who *domain.Identity) (*domain.Meeting, error) {
	if who == nil {
		return nil, domain.ErrAuthenticationRequired
	}
	m, err := s.FindActive(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	if m.HostID != who.ID {
		return nil, domain.ErrForbidden
	}
	if err := s.Store.DeactivateMeeting(ctx, m.ID, s.now()); err != nil {
		return nil, err
	}
	m.IsActive = false
	log.Info().Str("module", "app.meetings").Str("code", string(m.Code)).Msg("meeting ended")
	return m, nil
}
