package orch

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// Join places sid in the room of the active meeting identified by rawCode.
// A session sits in at most one room; joining another leaves the current one.
func (o *Orchestrator) Join(ctx context.Context, sid core.SessionID, rawCode string) (core.RoomService, error) {
	m, err := o.Meetings.FindActive(ctx, rawCode)
	if err != nil {
		return nil, err
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if code, _, ok := o.Registry.RoomOf(sid); ok {
		if code == m.Code {
			if room, ok := o.Rooms.GetRoom(code); ok {
				return room, nil
			}
		}
		o.KickBySID(ctx, sid)
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(code)).Msg("left previous room")
	}

	stop := o.listen(ctx, m.Code)

	o.mu.Lock()
	room := o.Rooms.GetOrCreate(m)
	o.adopt(m.Code, stop)
	first := room.AddMember(sid, sess)
	o.Registry.UpdateRoom(sid, m.Code)
	o.mu.Unlock()

	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("code", string(m.Code)).Bool("first", first).Msg("added to room")
	if first {
		o.publish(ctx, core.PresenceJoined, m.Code, sid, sess.Meta().Identity)
	}
	return room, nil
}

// KickBySID removes sid from its room; the connection stays open.
func (o *Orchestrator) KickBySID(ctx context.Context, sid core.SessionID) {
	code, sess, ok := o.Registry.RoomOf(sid)
	if !ok {
		return
	}

	o.mu.Lock()
	last := false
	if room, ok := o.Rooms.GetRoom(code); ok {
		last = room.RemoveMember(sid)
		if room.MemberCount() == 0 {
			o.Rooms.StopRoom(code)
			o.unsubscribe(code)
		}
	}
	o.Registry.RemoveRoom(sid)
	o.mu.Unlock()

	if last {
		o.publish(ctx, core.PresenceLeft, code, sid, sess.Meta().Identity)
	}
}

func (o *Orchestrator) OnDisconnect(ctx context.Context, sid core.SessionID) {
	o.KickBySID(ctx, sid)
	o.Registry.Unbind(sid)
}

// EndMeeting tells every local member the meeting is over and empties the room.
func (o *Orchestrator) EndMeeting(ctx context.Context, code domain.MeetingCode) {
	b, _ := json.Marshal(struct {
		Type    string             `json:"type"`
		Meeting domain.MeetingCode `json:"meeting"`
	}{"meeting_ended", code})
	o.Notify(code, b)
	for _, snap := range o.Registry.MembersOfRoom(code) {
		o.KickBySID(ctx, snap.SID)
	}
	o.mu.Lock()
	o.Rooms.StopRoom(code)
	o.unsubscribe(code)
	o.mu.Unlock()
}
