// Package store holds MeetingStore implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

type participationKey struct {
	meeting  domain.MeetingID
	identity domain.IdentityID
}

// MemoryStore is a threadsafe in-process MeetingStore for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	meetings map[domain.MeetingID]*domain.Meeting
	byCode   map[domain.MeetingCode]domain.MeetingID
	parts    map[participationKey]*domain.Participation
}

var _ core.MeetingStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		meetings: make(map[domain.MeetingID]*domain.Meeting),
		byCode:   make(map[domain.MeetingCode]domain.MeetingID),
		parts:    make(map[participationKey]*domain.Participation),
	}
}

func (s *MemoryStore) InsertMeeting(_ context.Context, m *domain.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCode[m.Code]; ok {
		return domain.ErrConflict
	}
	if _, ok := s.meetings[m.ID]; ok {
		return domain.ErrConflict
	}
	cp := *m
	s.meetings[m.ID] = &cp
	s.byCode[m.Code] = m.ID
	return nil
}

func (s *MemoryStore) FindActiveMeeting(_ context.Context, code domain.MeetingCode) (*domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	m := s.meetings[id]
	if !m.IsActive {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) FindMeeting(_ context.Context, id domain.MeetingID) (*domain.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemoryStore) DeactivateMeeting(_ context.Context, id domain.MeetingID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.meetings[id]
	if !ok || !m.IsActive {
		return domain.ErrNotFound
	}
	m.IsActive = false
	m.UpdatedAt = at.UTC()
	return nil
}

func (s *MemoryStore) InsertParticipation(_ context.Context, p *domain.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[p.MeetingID]; !ok {
		return domain.ErrNotFound
	}
	key := participationKey{p.MeetingID, p.IdentityID}
	if cur, ok := s.parts[key]; ok {
		cur.LeftAt = nil
		return domain.ErrConflict
	}
	cp := *p
	s.parts[key] = &cp
	return nil
}

func (s *MemoryStore) MarkLeft(_ context.Context, meeting domain.MeetingID, identity domain.IdentityID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parts[participationKey{meeting, identity}]
	if !ok {
		return domain.ErrNotFound
	}
	t := at.UTC()
	p.LeftAt = &t
	return nil
}

// Participation returns a copy of the record for (meeting, identity).
func (s *MemoryStore) Participation(meeting domain.MeetingID, identity domain.IdentityID) (*domain.Participation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.parts[participationKey{meeting, identity}]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}
