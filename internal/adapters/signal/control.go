package signal

import "github.com/semitha-uni-west/google-beet/internal/core"

func (ctl *SignalWSController) handlePing(conn core.SignalConnection) {
	ctl.sendJSON(conn, Envelope{Type: TypePong})
}
