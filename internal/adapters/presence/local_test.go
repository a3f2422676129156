package presence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semitha-uni-west/google-beet/internal/core"
)

func TestLocalBus_PublishToRoomSubscribersOnly(t *testing.T) {
	bus := NewLocalBus()
	ctx := context.Background()

	var a, b []core.PresenceEvent
	cancelA, err := bus.Subscribe(ctx, "ROOMA1", func(ev core.PresenceEvent) { a = append(a, ev) })
	require.NoError(t, err)
	_, err = bus.Subscribe(ctx, "ROOMB1", func(ev core.PresenceEvent) { b = append(b, ev) })
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, core.PresenceEvent{Kind: core.PresenceJoined, Code: "ROOMA1"}))
	assert.Len(t, a, 1)
	assert.Empty(t, b)

	cancelA()
	cancelA()
	require.NoError(t, bus.Publish(ctx, core.PresenceEvent{Kind: core.PresenceLeft, Code: "ROOMA1"}))
	assert.Len(t, a, 1, "no delivery after cancel")
}

func TestLocalBus_Closed(t *testing.T) {
	bus := NewLocalBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(context.Background(), core.PresenceEvent{Code: "ROOMA1"}), ErrClosed)
	_, err := bus.Subscribe(context.Background(), "ROOMA1", func(core.PresenceEvent) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRedisEventCodec(t *testing.T) {
	ev := core.PresenceEvent{
		Kind:   core.PresenceJoined,
		Code:   "ABC123DEF0",
		Peer:   core.MemberDTO{ID: "u1", Email: "a@x.io"},
		Origin: "sid-1",
	}
	payload, err := encodeEvent(ev)
	require.NoError(t, err)

	got, err := decodeEvent(string(payload))
	require.NoError(t, err)
	assert.Equal(t, ev, got)
	assert.Equal(t, "beet:presence:ABC123DEF0", channelName(ev.Code))

	_, err = decodeEvent("{not json")
	assert.Error(t, err)
}
