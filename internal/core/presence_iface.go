package core

import (
	"context"

	"github.com/semitha-uni-west/google-beet/internal/domain"
)

type PresenceKind string

const (
	PresenceJoined PresenceKind = "peer_joined"
	PresenceLeft   PresenceKind = "peer_left"
)

// PresenceEvent announces a participant entering or leaving a meeting room.
type PresenceEvent struct {
	Kind   PresenceKind       `json:"type"`
	Code   domain.MeetingCode `json:"meeting"`
	Peer   MemberDTO          `json:"peer"`
	Origin SessionID          `json:"origin"`
}

// PresenceBus fans presence events out to every server instance hosting the room.
type PresenceBus interface {
	Publish(ctx context.Context, ev PresenceEvent) error
	// Subscribe delivers events for code until the returned cancel is called.
	Subscribe(ctx context.Context, code domain.MeetingCode, fn func(PresenceEvent)) (cancel func(), err error)
	Close() error
}
