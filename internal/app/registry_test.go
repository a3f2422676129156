package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

func memberSession(id string) core.MemberSession {
	return core.NewMemberSession(domain.NewMember(&domain.Identity{ID: domain.IdentityID(id), Email: id + "@x.io"}))
}

func TestRegistry_RoomAssociation(t *testing.T) {
	r := NewRegistry()
	r.BindSignal("s1", memberSession("u1"), nil)
	r.BindSignal("s2", memberSession("u2"), nil)
	r.BindSignal("s3", memberSession("u3"), nil)

	_, _, ok := r.RoomOf("s1")
	assert.False(t, ok, "no room before join")

	require.True(t, r.UpdateRoom("s1", "ABC123DEF0"))
	require.True(t, r.UpdateRoom("s2", "ABC123DEF0"))
	require.True(t, r.UpdateRoom("s3", "OTHERROOM"))
	assert.False(t, r.UpdateRoom("nope", "ABC123DEF0"))

	code, sess, ok := r.RoomOf("s1")
	require.True(t, ok)
	assert.Equal(t, domain.MeetingCode("ABC123DEF0"), code)
	assert.Equal(t, domain.IdentityID("u1"), sess.Meta().Identity.ID)

	assert.Len(t, r.MembersOfRoom("ABC123DEF0"), 2)
	mates := r.RoomMates("s1")
	require.Len(t, mates, 1)
	assert.Equal(t, core.SessionID("s2"), mates[0].SID)

	r.RemoveRoom("s1")
	_, _, ok = r.RoomOf("s1")
	assert.False(t, ok)
	assert.Nil(t, r.RoomMates("s1"))

	id, ok := r.Identity("s3")
	require.True(t, ok)
	assert.Equal(t, domain.IdentityID("u3"), id.ID)

	r.Unbind("s3")
	_, ok = r.GetSession("s3")
	assert.False(t, ok)
}

func TestRegistry_CancelAndRebind(t *testing.T) {
	r := NewRegistry()
	first, second := 0, 0
	r.BindSignal("s1", memberSession("u1"), func() { first++ })
	r.BindSignal("s1", memberSession("u1"), func() { second++ })
	assert.Equal(t, 1, first, "rebinding cancels the previous connection")

	assert.True(t, r.Cancel("s1"))
	assert.Equal(t, 1, second)
	assert.False(t, r.Cancel("missing"))
}

func TestRoomManager(t *testing.T) {
	rm := NewRoomManager()
	m := &domain.Meeting{ID: "m1", Code: "ABC123DEF0", Title: "Sync"}

	room := rm.GetOrCreate(m)
	assert.Same(t, room, rm.GetOrCreate(m))

	got, ok := rm.GetRoom("ABC123DEF0")
	require.True(t, ok)
	assert.Same(t, room, got)

	list := rm.List()
	require.Len(t, list, 1)
	assert.Equal(t, "Sync", list[0].Title)

	rm.StopRoom("ABC123DEF0")
	_, ok = rm.GetRoom("ABC123DEF0")
	assert.False(t, ok)
}
