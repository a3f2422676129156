package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMeetingTitle = "Quick Meeting"
	// MaxTitleLen counts characters, not bytes.
	MaxTitleLen         = 120
)

type MeetingID string

type Meeting struct {
	ID        MeetingID   `json:"id"`
	Code      MeetingCode `json:"meeting_code"`
	Title     string      `json:"title"`
	HostID    IdentityID  `json:"host_id"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewMeeting builds an active meeting hosted by host. An empty title becomes
// DefaultMeetingTitle.
func NewMeeting(code MeetingCode, title string, host IdentityID, now time.Time) (*Meeting, error) {
	if err := code.Validate(); err != nil {
		return nil, err
	}
	if host == "" {
		return nil, ErrInvalidIdentity
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultMeetingTitle
	}
	if r := []rune(title); len(r) > MaxTitleLen {
		title = strings.TrimSpace(string(r[:MaxTitleLen]))
	}
	now = now.UTC()
	return &Meeting{
		ID:        MeetingID(uuid.NewString()),
		Code:      code,
		Title:     title,
		HostID:    host,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
