package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semitha-uni-west/google-beet/internal/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: want %d dest, got %d", len(r.values), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *bool:
			*p = r.values[i].(bool)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported dest %T", d)
		}
	}
	return nil
}

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs   []execCall
	execErr []error
	tags    []string
	row     pgx.Row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	i := len(f.execs)
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	var err error
	if i < len(f.execErr) {
		err = f.execErr[i]
	}
	tag := "UPDATE 1"
	if i < len(f.tags) {
		tag = f.tags[i]
	}
	return pgconn.NewCommandTag(tag), err
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row { return f.row }

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.False(t, isUniqueViolation(nil))
}

func TestPostgresStore_InsertMeetingConflict(t *testing.T) {
	db := &fakeDB{execErr: []error{&pgconn.PgError{Code: uniqueViolation}}}
	s := &PostgresStore{db: db}
	m, _ := domain.NewMeeting("ABC123DEF0", "", "host", time.Now())

	err := s.InsertMeeting(context.Background(), m)
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.Len(t, db.execs, 1)
	assert.Equal(t, "ABC123DEF0", db.execs[0].args[1])
}

func TestPostgresStore_InsertParticipationDuplicateIsConflict(t *testing.T) {
	db := &fakeDB{execErr: []error{&pgconn.PgError{Code: uniqueViolation}, nil}}
	s := &PostgresStore{db: db}

	err := s.InsertParticipation(context.Background(), domain.NewParticipation("m-1", "u-1", time.Now()))
	assert.ErrorIs(t, err, domain.ErrConflict)
	require.Len(t, db.execs, 2, "duplicate should reactivate the existing row")
	assert.Contains(t, db.execs[1].sql, "left_at = NULL")
}

func TestPostgresStore_InsertParticipationOtherError(t *testing.T) {
	db := &fakeDB{execErr: []error{errors.New("connection reset")}}
	s := &PostgresStore{db: db}

	err := s.InsertParticipation(context.Background(), domain.NewParticipation("m-1", "u-1", time.Now()))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConflict)
}

func TestPostgresStore_FindActiveMeeting(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	db := &fakeDB{row: fakeRow{values: []any{"m-1", "ABC123DEF0", "Quick Meeting", "host", true, now, now}}}
	s := &PostgresStore{db: db}

	m, err := s.FindActiveMeeting(context.Background(), "ABC123DEF0")
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingID("m-1"), m.ID)
	assert.Equal(t, domain.MeetingCode("ABC123DEF0"), m.Code)
	assert.Equal(t, domain.IdentityID("host"), m.HostID)
	assert.True(t, m.IsActive)

	s.db = &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	_, err = s.FindActiveMeeting(context.Background(), "ZZZZZZZZZZ")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresStore_MarkLeft(t *testing.T) {
	s := &PostgresStore{db: &fakeDB{}}
	assert.NoError(t, s.MarkLeft(context.Background(), "m-1", "u-1", time.Now()))

	s.db = &fakeDB{tags: []string{"UPDATE 0"}}
	assert.ErrorIs(t, s.MarkLeft(context.Background(), "m-1", "u-1", time.Now()), domain.ErrNotFound)

	s.db = &fakeDB{execErr: []error{errors.New("timeout")}}
	assert.Error(t, s.MarkLeft(context.Background(), "m-1", "u-1", time.Now()))
}

func TestPostgresStore_DeactivateMeeting(t *testing.T) {
	s := &PostgresStore{db: &fakeDB{}}
	assert.NoError(t, s.DeactivateMeeting(context.Background(), "m-1", time.Now()))

	s.db = &fakeDB{tags: []string{"UPDATE 0"}}
	assert.ErrorIs(t, s.DeactivateMeeting(context.Background(), "m-1", time.Now()), domain.ErrNotFound)
}
