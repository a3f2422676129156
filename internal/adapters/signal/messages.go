package signal

import (
	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// Frame types of the presence channel.
const (
	TypeJoin   = "join"
	TypeLeave  = "leave"
	TypePing   = "ping"
	TypeWhoAmI = "whoami"

	TypeRoomState    = "room_state"
	TypePeerJoined   = string(core.PresenceJoined)
	TypePeerLeft     = string(core.PresenceLeft)
	TypeLeft         = "left"
	TypePong         = "pong"
	TypeError        = "error"
	TypeMeetingEnded = "meeting_ended"
)

type Envelope struct {
	Type string `json:"type"`
}

type JoinMessage struct {
	Type    string `json:"type"`
	Meeting string `json:"meeting"`
}

type RoomStateMessage struct {
	Type    string             `json:"type"`
	Meeting domain.MeetingCode `json:"meeting"`
	Title   string             `json:"title"`
	Members []core.MemberDTO   `json:"members"`
	Count   int                `json:"count"`
}

type PeerMessage struct {
	Type    string             `json:"type"`
	Meeting domain.MeetingCode `json:"meeting"`
	Peer    core.MemberDTO     `json:"peer"`
}

type WhoAmIMessage struct {
	Type     string             `json:"type"`
	Identity core.MemberDTO     `json:"identity"`
	Meeting  domain.MeetingCode `json:"meeting,omitempty"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type MeetingEndedMessage struct {
	Type    string             `json:"type"`
	Meeting domain.MeetingCode `json:"meeting"`
}

func errorFrame(msg string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Error: msg}
}
