package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint conflict.
const uniqueViolation = "23505"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db querier
}

var _ core.MeetingStore = (*PostgresStore)(nil)

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool}
}

// Connect opens a pool and checks connectivity.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (s *PostgresStore) InsertMeeting(ctx context.Context, m *domain.Meeting) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO meetings (id, meeting_code, title, host_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(m.ID), string(m.Code), m.Title, string(m.HostID), m.IsActive, m.CreatedAt, m.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("meeting code %s: %w", m.Code, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert meeting %s: %w", m.Code, err)
	}
	return nil
}

const meetingColumns = `id, meeting_code, title, host_id, is_active, created_at, updated_at`

func scanMeeting(row pgx.Row) (*domain.Meeting, error) {
	var (
		m                domain.Meeting
		id, code, hostID string
	)
	if err := row.Scan(&id, &code, &m.Title, &hostID, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	m.ID = domain.MeetingID(id)
	m.Code = domain.MeetingCode(code)
	m.HostID = domain.IdentityID(hostID)
	return &m, nil
}

func (s *PostgresStore) FindActiveMeeting(ctx context.Context, code domain.MeetingCode) (*domain.Meeting, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE meeting_code = $1 AND is_active = TRUE LIMIT 1`,
		string(code))
	m, err := scanMeeting(row)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find meeting %s: %w", code, err)
	}
	return m, err
}

func (s *PostgresStore) FindMeeting(ctx context.Context, id domain.MeetingID) (*domain.Meeting, error) {
	row := s.db.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, string(id))
	m, err := scanMeeting(row)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find meeting %s: %w", id, err)
	}
	return m, err
}

func (s *PostgresStore) DeactivateMeeting(ctx context.Context, id domain.MeetingID, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE meetings SET is_active = FALSE, updated_at = $2 WHERE id = $1 AND is_active = TRUE`,
		string(id), at.UTC())
	if err != nil {
		return fmt.Errorf("deactivate meeting %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) InsertParticipation(ctx context.Context, p *domain.Participation) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO meeting_participants (id, meeting_id, user_id, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		p.ID, string(p.MeetingID), string(p.IdentityID), p.JoinedAt)
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return fmt.Errorf("insert participation: %w", err)
	}
	// A returning participant is present again.
	if _, rerr := s.db.Exec(ctx,
		`UPDATE meeting_participants SET left_at = NULL
		 WHERE meeting_id = $1 AND user_id = $2 AND left_at IS NOT NULL`,
		string(p.MeetingID), string(p.IdentityID)); rerr != nil {
		log.Warn().Err(rerr).Str("module", "store.postgres").Str("meeting", string(p.MeetingID)).Msg("reactivate participation")
	}
	return domain.ErrConflict
}

func (s *PostgresStore) MarkLeft(ctx context.Context, meeting domain.MeetingID, identity domain.IdentityID, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE meeting_participants SET left_at = $3 WHERE meeting_id = $1 AND user_id = $2`,
		string(meeting), string(identity), at.UTC())
	if err != nil {
		return fmt.Errorf("mark left: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
