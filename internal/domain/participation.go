package domain

import (
	"time"

	"github.com/google/uuid"
)

// Participation is the presence span of one identity in one meeting.
// Unique per (MeetingID, IdentityID); never deleted.
type Participation struct {
	ID         string     `json:"id"`
	MeetingID  MeetingID  `json:"meeting_id"`
	IdentityID IdentityID `json:"user_id"`
	JoinedAt   time.Time  `json:"joined_at"`
	LeftAt     *time.Time `json:"left_at,omitempty"`
}

func NewParticipation(meeting MeetingID, identity IdentityID, now time.Time) *Participation {
	return &Participation{
		ID:         uuid.NewString(),
		MeetingID:  meeting,
		IdentityID: identity,
		JoinedAt:   now.UTC(),
	}
}

func (p *Participation) Active() bool { return p.LeftAt == nil }
