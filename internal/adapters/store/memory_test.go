package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semitha-uni-west/google-beet/internal/domain"
)

func seedMeeting(t *testing.T, s *MemoryStore, code domain.MeetingCode) *domain.Meeting {
	t.Helper()
	m, err := domain.NewMeeting(code, "", "host", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.InsertMeeting(context.Background(), m))
	return m
}

func TestMemoryStore_Meetings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	m := seedMeeting(t, s, "ABC123DEF0")

	dup, _ := domain.NewMeeting("ABC123DEF0", "", "other", time.Now())
	assert.ErrorIs(t, s.InsertMeeting(ctx, dup), domain.ErrConflict)

	got, err := s.FindActiveMeeting(ctx, "ABC123DEF0")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = s.FindActiveMeeting(ctx, "ZZZZZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.DeactivateMeeting(ctx, m.ID, time.Now()))
	_, err = s.FindActiveMeeting(ctx, "ABC123DEF0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.DeactivateMeeting(ctx, m.ID, time.Now()), domain.ErrNotFound)

	got, err = s.FindMeeting(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestMemoryStore_Participation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	m := seedMeeting(t, s, "ABC123DEF0")

	require.NoError(t, s.InsertParticipation(ctx, domain.NewParticipation(m.ID, "u1", time.Now())))
	assert.ErrorIs(t, s.InsertParticipation(ctx, domain.NewParticipation(m.ID, "u1", time.Now())), domain.ErrConflict)
	assert.ErrorIs(t, s.InsertParticipation(ctx, domain.NewParticipation("missing", "u1", time.Now())), domain.ErrNotFound)

	require.NoError(t, s.MarkLeft(ctx, m.ID, "u1", time.Now()))
	p, ok := s.Participation(m.ID, "u1")
	require.True(t, ok)
	assert.False(t, p.Active())

	// rejoining reactivates the record but still reports the duplicate
	assert.ErrorIs(t, s.InsertParticipation(ctx, domain.NewParticipation(m.ID, "u1", time.Now())), domain.ErrConflict)
	p, _ = s.Participation(m.ID, "u1")
	assert.True(t, p.Active())

	assert.ErrorIs(t, s.MarkLeft(ctx, m.ID, "u2", time.Now()), domain.ErrNotFound)
}
