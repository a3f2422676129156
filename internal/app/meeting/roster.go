package meeting

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// Participant is a remote member of the meeting.
type Participant struct {
	ID     domain.IdentityID
	Email  string
	Name   string
	Stream core.Stream
	Peer   core.PeerConnection

	order uint64
}

// Roster tracks remote participants as presence reports them. The local
// identity is never listed.
type Roster struct {
	self  domain.IdentityID
	peers core.PeerFactory

	mu     sync.Mutex
	seq    uint64
	byID   map[domain.IdentityID]*Participant
	closed bool
}

// NewRoster builds an empty roster; peers may be nil.
func NewRoster(self domain.IdentityID, peers core.PeerFactory) *Roster {
	return &Roster{self: self, peers: peers, byID: make(map[domain.IdentityID]*Participant)}
}

func (r *Roster) has(id domain.IdentityID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byID[id]
	return ok
}

// Add inserts the announced member and reports whether it was new.
func (r *Roster) Add(m core.MemberDTO) bool {
	if m.ID == "" || m.ID == r.self || r.has(m.ID) {
		return false
	}

	var peer core.PeerConnection
	if r.peers != nil {
		p, err := r.peers.NewPeer(m.ID)
		if err != nil {
			log.Error().Err(err).Str("module", "meeting.roster").Str("peer", string(m.ID)).Msg("create peer")
		} else {
			peer = p
		}
	}

	r.mu.Lock()
	if _, ok := r.byID[m.ID]; ok || r.closed {
		r.mu.Unlock()
		release(peer)
		return false
	}
	r.seq++
	r.byID[m.ID] = &Participant{ID: m.ID, Email: m.Email, Name: m.Name, Peer: peer, order: r.seq}
	r.mu.Unlock()

	if peer != nil {
		id := m.ID
		peer.OnClosed(func() { r.dropPeer(id, peer) })
	}
	log.Info().Str("module", "meeting.roster").Str("peer", string(m.ID)).Msg("participant added")
	return true
}

// Remove drops id and releases its peer handle.
func (r *Roster) Remove(id domain.IdentityID) bool {
	r.mu.Lock()
	p, ok := r.byID[id]
	delete(r.byID, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	release(p.Peer)
	log.Info().Str("module", "meeting.roster").Str("peer", string(id)).Msg("participant removed")
	return true
}

// dropPeer removes id when its connection terminated, unless the entry has
// since been replaced.
func (r *Roster) dropPeer(id domain.IdentityID, peer core.PeerConnection) {
	r.mu.Lock()
	p, ok := r.byID[id]
	if !ok || p.Peer != peer {
		r.mu.Unlock()
		return
	}
	delete(r.byID, id)
	r.mu.Unlock()
	release(peer)
	log.Info().Str("module", "meeting.roster").Str("peer", string(id)).Msg("peer connection terminated")
}

// SetStream attaches a remote media stream to id.
func (r *Roster) SetStream(id domain.IdentityID, s core.Stream) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if ok {
		p.Stream = s
	}
	return ok
}

// Sync replaces the roster with members, keeping entries that are still present.
func (r *Roster) Sync(members []core.MemberDTO) {
	keep := make(map[domain.IdentityID]struct{}, len(members))
	for _, m := range members {
		keep[m.ID] = struct{}{}
	}
	r.mu.Lock()
	var gone []domain.IdentityID
	for id := range r.byID {
		if _, ok := keep[id]; !ok {
			gone = append(gone, id)
		}
	}
	r.mu.Unlock()

	for _, id := range gone {
		r.Remove(id)
	}
	for _, m := range members {
		r.Add(m)
	}
}

// Apply handles one presence event.
func (r *Roster) Apply(ev core.PresenceEvent) {
	switch ev.Kind {
	case core.PresenceJoined:
		r.Add(ev.Peer)
	case core.PresenceLeft:
		r.Remove(ev.Peer.ID)
	}
}

// Snapshot lists participants in order of arrival.
func (r *Roster) Snapshot() []Participant {
	r.mu.Lock()
	out := make([]Participant, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, *p)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}

func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// CloseAll releases every peer and refuses later additions.
func (r *Roster) CloseAll() {
	r.mu.Lock()
	r.closed = true
	all := r.byID
	r.byID = make(map[domain.IdentityID]*Participant)
	r.mu.Unlock()

	for _, p := range all {
		release(p.Peer)
	}
}

func release(p core.PeerConnection) {
	if p == nil {
		return
	}
	if err := p.Close(); err != nil {
		log.Warn().Err(err).Str("module", "meeting.roster").Msg("release peer")
	}
}
