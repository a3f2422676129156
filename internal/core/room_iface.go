package core

import (
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	ID    domain.IdentityID `json:"id"`
	Email string            `json:"email"`
	Name  string            `json:"name,omitempty"`
}

func NewMemberDTO(i *domain.Identity) MemberDTO {
	return MemberDTO{ID: i.ID, Email: i.Email, Name: i.FullName}
}

// RoomService is the core-facing API of a live meeting room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	Meeting() *domain.Meeting
	MemberCount() int
	MembersSnapshot() []MemberDTO
	Has(sid SessionID) bool

	// AddMember reports whether sid is the first session of its identity.
	AddMember(sid SessionID, ms MemberSession) bool
	// RemoveMember reports whether sid was the last session of its identity.
	RemoveMember(sid SessionID) bool
	Broadcast(from SessionID, data Frame) PublishResult
	SendTo(sid SessionID, data Frame) error
}

type RoomInfo struct {
	Code        domain.MeetingCode `json:"code"`
	Title       string             `json:"title"`
	MemberCount int                `json:"member_count"`
}

type RoomManager interface {
	GetOrCreate(m *domain.Meeting) RoomService
	GetRoom(code domain.MeetingCode) (RoomService, bool)
	List() []RoomInfo
	StopRoom(code domain.MeetingCode)
}
