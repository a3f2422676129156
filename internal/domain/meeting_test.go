package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeeting_DefaultsTitle(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	m, err := NewMeeting("ABC123DEF0", "   ", "host-1", now)
	require.NoError(t, err)
	assert.Equal(t, DefaultMeetingTitle, m.Title)
	assert.True(t, m.IsActive)
	assert.Equal(t, now, m.CreatedAt)
	assert.Equal(t, now, m.UpdatedAt)
	assert.NotEmpty(t, m.ID)

	m, err = NewMeeting("ABC123DEF0", "Weekly sync", "host-1", now)
	require.NoError(t, err)
	assert.Equal(t, "Weekly sync", m.Title)
}

func TestNewMeeting_TruncatesTitleByCharacter(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	title := strings.Repeat("a", MaxTitleLen-1) + "éé"
	m, err := NewMeeting("ABC123DEF0", title, "host-1", now)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(m.Title))
	assert.Equal(t, MaxTitleLen, utf8.RuneCountInString(m.Title))
	assert.Equal(t, strings.Repeat("a", MaxTitleLen-1)+"é", m.Title)

	short := strings.Repeat("é", MaxTitleLen)
	m, err = NewMeeting("ABC123DEF0", short, "host-1", now)
	require.NoError(t, err)
	assert.Equal(t, short, m.Title, "a title at the limit is kept whole")
}

func TestNewMeeting_Rejects(t *testing.T) {
	_, err := NewMeeting("bad code", "", "host-1", time.Now())
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = NewMeeting("ABC123DEF0", "", "", time.Now())
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity(" u-1 ", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, IdentityID("u-1"), id.ID)
	assert.Equal(t, "ada@example.com", id.DisplayName())

	id.FullName = "Ada"
	assert.Equal(t, "Ada", id.DisplayName())

	_, err = NewIdentity("", "ada@example.com")
	assert.ErrorIs(t, err, ErrInvalidIdentity)
	_, err = NewIdentity("u-1", "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidIdentity)
}

func TestParticipation(t *testing.T) {
	p := NewParticipation("m-1", "u-1", time.Now())
	assert.True(t, p.Active())
	left := time.Now()
	p.LeftAt = &left
	assert.False(t, p.Active())
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Meeting not found or is no longer active", UserMessage(ErrNotFound))
	assert.Equal(t, "Please enter a meeting code", UserMessage(ErrCodeRequired))
	assert.Equal(t, "Failed to access camera/microphone", UserMessage(ErrMediaAccessDenied))
	assert.Equal(t, "Failed to share screen", UserMessage(ErrScreenShareDenied))
}

func TestMeetingRoute(t *testing.T) {
	assert.Equal(t, Route("/meeting/ABC123DEF0"), MeetingRoute("ABC123DEF0"))
}
