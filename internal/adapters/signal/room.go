package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

func (ctl *SignalWSController) handleJoin(ctx context.Context, sid core.SessionID, conn core.SignalConnection, data []byte) {
	var p JoinMessage
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendJSON(conn, errorFrame("bad_payload"))
		return
	}
	identity, ok := ctl.Orch.Registry.Identity(sid)
	if !ok {
		ctl.sendJSON(conn, errorFrame("unknown_session"))
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(identity.ID) {
		log.Warn().Str("module", "signal").Str("identity", string(identity.ID)).Msg("join rate limited")
		ctl.sendJSON(conn, errorFrame("rate_limited"))
		return
	}

	room, err := ctl.Orch.Join(ctx, sid, p.Meeting)
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("meeting", p.Meeting).Msg("join refused")
		ctl.sendJSON(conn, errorFrame(domain.UserMessage(err)))
		return
	}

	m := room.Meeting()
	members := room.MembersSnapshot()
	ctl.sendJSON(conn, RoomStateMessage{
		Type:    TypeRoomState,
		Meeting: m.Code,
		Title:   m.Title,
		Members: members,
		Count:   len(members),
	})
}

// handleLeave exits the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(ctx context.Context, sid core.SessionID, conn core.SignalConnection) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Orch.KickBySID(ctx, sid)
	ctl.sendJSON(conn, Envelope{Type: TypeLeft})
}
