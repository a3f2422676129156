package core

import (
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

var ErrNoSignal = errors.New("member has no signal connection")

type roomEntry struct {
	ms    MemberSession
	order uint64
}

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	meeting *domain.Meeting

	mu         sync.RWMutex
	seq        uint64
	bySID      map[SessionID]roomEntry
	byIdentity map[domain.IdentityID]map[SessionID]struct{}
}

func NewRoomService(m *domain.Meeting) RoomService {
	return &roomImpl{
		meeting:    m,
		bySID:      make(map[SessionID]roomEntry),
		byIdentity: make(map[domain.IdentityID]map[SessionID]struct{}),
	}
}

func (r *roomImpl) Meeting() *domain.Meeting { return r.meeting }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byIdentity)
}

func (r *roomImpl) Has(sid SessionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.bySID[sid]
	return ok
}

func (r *roomImpl) AddMember(sid SessionID, ms MemberSession) bool {
	id := ms.Meta().Identity.ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySID[sid]; ok {
		return false
	}
	r.seq++
	r.bySID[sid] = roomEntry{ms: ms, order: r.seq}
	sids, ok := r.byIdentity[id]
	if !ok {
		sids = make(map[SessionID]struct{})
		r.byIdentity[id] = sids
	}
	sids[sid] = struct{}{}
	log.Info().Str("module", "core.room").Str("code", string(r.meeting.Code)).Str("sid", string(sid)).Str("identity", string(id)).Msg("member added")
	return len(sids) == 1
}

func (r *roomImpl) RemoveMember(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.bySID[sid]
	if !ok {
		return false
	}
	delete(r.bySID, sid)
	id := e.ms.Meta().Identity.ID
	last := false
	if sids, ok := r.byIdentity[id]; ok {
		delete(sids, sid)
		if len(sids) == 0 {
			delete(r.byIdentity, id)
			last = true
		}
	}
	log.Info().Str("module", "core.room").Str("code", string(r.meeting.Code)).Str("sid", string(sid)).Bool("last", last).Msg("member removed")
	return last
}

func (r *roomImpl) Broadcast(from SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, e := range r.bySID {
		if sid == from {
			continue
		}
		sc := e.ms.Signal()
		if sc == nil {
			continue
		}
		if err := sc.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, sid)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) SendTo(sid SessionID, data Frame) error {
	r.mu.RLock()
	e, ok := r.bySID[sid]
	r.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}
	sc := e.ms.Signal()
	if sc == nil {
		return ErrNoSignal
	}
	return sc.TrySend(data)
}

// MembersSnapshot lists each identity once, in order of first arrival.
func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	type ordered struct {
		dto   MemberDTO
		order uint64
	}
	first := make(map[domain.IdentityID]ordered, len(r.byIdentity))
	for _, e := range r.bySID {
		id := e.ms.Meta().Identity
		if cur, ok := first[id.ID]; ok && cur.order < e.order {
			continue
		}
		first[id.ID] = ordered{dto: NewMemberDTO(id), order: e.order}
	}
	list := make([]ordered, 0, len(first))
	for _, o := range first {
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].order < list[j].order })
	out := make([]MemberDTO, 0, len(list))
	for _, o := range list {
		out = append(out, o.dto)
	}
	return out
}
