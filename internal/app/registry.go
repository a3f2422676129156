package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

type sessionEntry struct {
	Code    domain.MeetingCode
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry tracks every connected signal session and the room it sits in.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) BindSignal(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.sessions[sid]; ok && old.Cancel != nil {
		old.Cancel()
	}
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Identity returns the authenticated identity behind sid.
func (r *Registry) Identity(sid core.SessionID) (*domain.Identity, bool) {
	sess, ok := r.GetSession(sid)
	if !ok || sess.Meta() == nil || sess.Meta().Identity == nil {
		return nil, false
	}
	return sess.Meta().Identity, true
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.MeetingCode, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.Code == "" {
		return "", nil, false
	}
	return entry.Code, entry.Session, true
}

func (r *Registry) UpdateRoom(sid core.SessionID, code domain.MeetingCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.Code = code
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("code", string(code)).Msg("updated room")
	return true
}

func (r *Registry) RemoveRoom(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[sid]; ok {
		entry.Code = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed room association")
}

// Occupant is a session seated in a room.
type Occupant struct {
	SID     core.SessionID
	Session core.MemberSession
}

func (r *Registry) MembersOfRoom(code domain.MeetingCode) []Occupant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Occupant, 0, len(r.sessions))
	for sid, e := range r.sessions {
		if e.Code == code {
			out = append(out, Occupant{SID: sid, Session: e.Session})
		}
	}
	return out
}

// RoomMates lists the other sessions in sid's room.
func (r *Registry) RoomMates(sid core.SessionID) []Occupant {
	code, _, ok := r.RoomOf(sid)
	if !ok {
		return nil
	}
	mates := r.MembersOfRoom(code)
	out := mates[:0]
	for _, m := range mates {
		if m.SID != sid {
			out = append(out, m)
		}
	}
	return out
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
