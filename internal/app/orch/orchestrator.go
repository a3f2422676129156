package orch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/app"
	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// Orchestrator owns live meeting rooms and their presence fan-out.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomManager
	Policy   app.Policy
	Bus      core.PresenceBus
	Meetings *app.MeetingService

	// SubscribeTimeout bounds opening a room's presence subscription.
	SubscribeTimeout time.Duration

	mu   sync.Mutex
	subs map[domain.MeetingCode]func()
}

const defaultSubscribeTimeout = 5 * time.Second

func New(reg *app.Registry, rooms core.RoomManager, policy app.Policy, bus core.PresenceBus, meetings *app.MeetingService) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Policy:   policy,
		Bus:      bus,
		Meetings: meetings,

		SubscribeTimeout: defaultSubscribeTimeout,
		subs:             make(map[domain.MeetingCode]func()),
	}
}

// presenceFrame is what room members receive; session ids stay server side.
type presenceFrame struct {
	Type    core.PresenceKind  `json:"type"`
	Meeting domain.MeetingCode `json:"meeting"`
	Peer    core.MemberDTO     `json:"peer"`
}

func (o *Orchestrator) publish(ctx context.Context, kind core.PresenceKind, code domain.MeetingCode, sid core.SessionID, id *domain.Identity) {
	ev := core.PresenceEvent{Kind: kind, Code: code, Peer: core.NewMemberDTO(id), Origin: sid}
	if err := o.Bus.Publish(ctx, ev); err != nil {
		log.Error().Err(err).Str("module", "orch").Str("code", string(code)).Str("type", string(kind)).Msg("publish presence")
	}
}

// deliver fans a presence event out to the local members of its room.
func (o *Orchestrator) deliver(ev core.PresenceEvent) {
	room, ok := o.Rooms.GetRoom(ev.Code)
	if !ok {
		return
	}
	b, err := json.Marshal(presenceFrame{Type: ev.Kind, Meeting: ev.Code, Peer: ev.Peer})
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode presence")
		return
	}
	o.handleResult(room, room.Broadcast(ev.Origin, b))
}

// Notify sends an arbitrary frame to every local member of code.
func (o *Orchestrator) Notify(code domain.MeetingCode, frame core.Frame) {
	room, ok := o.Rooms.GetRoom(code)
	if !ok {
		return
	}
	o.handleResult(room, room.Broadcast("", frame))
}

func (o *Orchestrator) handleResult(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow)).Msg("kicking slow member")
			o.Registry.Cancel(slow)
		case app.MarkSlow, app.DropFrame, app.NoAction:
		}
	}
}

// listen opens a presence subscription for code unless one is already held.
// The bus call is bounded by SubscribeTimeout and runs without o.mu held.
func (o *Orchestrator) listen(ctx context.Context, code domain.MeetingCode) func() {
	o.mu.Lock()
	_, ok := o.subs[code]
	o.mu.Unlock()
	if ok {
		return nil
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.SubscribeTimeout)
	defer cancel()
	stop, err := o.Bus.Subscribe(sctx, code, o.deliver)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("code", string(code)).Msg("presence subscribe")
		return nil
	}
	return stop
}

// adopt keeps stop as the subscription of code, or drops it when another
// join got there first. Callers hold o.mu.
func (o *Orchestrator) adopt(code domain.MeetingCode, stop func()) {
	if stop == nil {
		return
	}
	if _, ok := o.subs[code]; ok {
		stop()
		return
	}
	o.subs[code] = stop
}

func (o *Orchestrator) unsubscribe(code domain.MeetingCode) {
	if cancel, ok := o.subs[code]; ok {
		cancel()
		delete(o.subs, code)
	}
}

// Close drops every presence subscription.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for code := range o.subs {
		o.unsubscribe(code)
	}
}
