package core

import (
	"context"
	"time"

	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// MeetingStore is the relational record store for meetings and participation.
type MeetingStore interface {
	// InsertMeeting fails with domain.ErrConflict when the code is taken.
	InsertMeeting(ctx context.Context, m *domain.Meeting) error
	// FindActiveMeeting matches the exact (already upper-cased) code with is_active = true.
	// Fails with domain.ErrNotFound.
	FindActiveMeeting(ctx context.Context, code domain.MeetingCode) (*domain.Meeting, error)
	FindMeeting(ctx context.Context, id domain.MeetingID) (*domain.Meeting, error)
	DeactivateMeeting(ctx context.Context, id domain.MeetingID, at time.Time) error

	// InsertParticipation fails with domain.ErrConflict when (meeting, identity)
	// already has a record. Callers treat that as a successful idempotent join.
	InsertParticipation(ctx context.Context, p *domain.Participation) error
	// MarkLeft sets left_at on the record keyed by (meeting, identity).
	// Fails with domain.ErrNotFound when there is no such record.
	MarkLeft(ctx context.Context, meeting domain.MeetingID, identity domain.IdentityID, at time.Time) error
}
