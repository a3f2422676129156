package app

import "github.com/semitha-uni-west/google-beet/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	MarkSlow
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send buffer is full.
type Policy interface {
	OnBackPressure(room core.RoomService, sid core.SessionID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(core.RoomService, core.SessionID) BackpressureAction {
	return KickMember
}

// TolerantPolicy drops frames for slow members and never kicks.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(core.RoomService, core.SessionID) BackpressureAction {
	return DropFrame
}
