package apiclient

import (
	"context"
	"time"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// Store is a core.MeetingStore served by the meeting server. The server
// acts on behalf of the token's identity, so identity arguments are only
// checked locally.
type Store struct {
	c *Client
}

var _ core.MeetingStore = (*Store)(nil)

func NewStore(c *Client) *Store { return &Store{c: c} }

type createMeetingRequest struct {
	Title string `json:"title"`
	Code  string `json:"code"`
}

// InsertMeeting creates m on the server and copies back the stored record.
func (s *Store) InsertMeeting(ctx context.Context, m *domain.Meeting) error {
	var out domain.Meeting
	resp, err := s.c.request(ctx).
		SetBody(createMeetingRequest{Title: m.Title, Code: string(m.Code)}).
		SetResult(&out).
		Post("/api/meetings")
	if err := check("insert meeting", resp, err); err != nil {
		return err
	}
	*m = out
	return nil
}

func (s *Store) FindActiveMeeting(ctx context.Context, code domain.MeetingCode) (*domain.Meeting, error) {
	var out domain.Meeting
	resp, err := s.c.request(ctx).
		SetPathParam("code", string(code)).
		SetResult(&out).
		Get("/api/codes/{code}")
	if err := check("find meeting", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) FindMeeting(ctx context.Context, id domain.MeetingID) (*domain.Meeting, error) {
	var out domain.Meeting
	resp, err := s.c.request(ctx).
		SetPathParam("id", string(id)).
		SetResult(&out).
		Get("/api/meetings/{id}")
	if err := check("find meeting", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) DeactivateMeeting(ctx context.Context, id domain.MeetingID, _ time.Time) error {
	resp, err := s.c.request(ctx).
		SetPathParam("id", string(id)).
		Delete("/api/meetings/{id}")
	return check("end meeting", resp, err)
}

func (s *Store) InsertParticipation(ctx context.Context, p *domain.Participation) error {
	resp, err := s.c.request(ctx).
		SetPathParam("id", string(p.MeetingID)).
		Post("/api/meetings/{id}/participants")
	return check("join meeting", resp, err)
}

func (s *Store) MarkLeft(ctx context.Context, meeting domain.MeetingID, _ domain.IdentityID, _ time.Time) error {
	resp, err := s.c.request(ctx).
		SetPathParam("id", string(meeting)).
		Patch("/api/meetings/{id}/participants/me")
	return check("leave meeting", resp, err)
}
