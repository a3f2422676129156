package signal

import (
	"github.com/semitha-uni-west/google-beet/internal/core"
)

func (ctl *SignalWSController) handleWhoAmI(sid core.SessionID, conn core.SignalConnection) {
	identity, ok := ctl.Orch.Registry.Identity(sid)
	if !ok {
		ctl.sendJSON(conn, errorFrame("unknown_session"))
		return
	}
	resp := WhoAmIMessage{Type: TypeWhoAmI, Identity: core.NewMemberDTO(identity)}
	if code, _, ok := ctl.Orch.Registry.RoomOf(sid); ok {
		resp.Meeting = code
	}
	ctl.sendJSON(conn, resp)
}
