package meeting

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semitha-uni-west/google-beet/internal/domain"
)

func startedMedia(t *testing.T, d *fakeDevices) *LocalMedia {
	t.Helper()
	m := NewLocalMedia(d)
	require.NoError(t, m.Start(context.Background()))
	return m
}

func TestLocalMedia_DoubleToggleRestores(t *testing.T) {
	m := startedMedia(t, &fakeDevices{})
	before := m.State()
	require.True(t, before.AudioEnabled)
	require.True(t, before.VideoEnabled)

	assert.False(t, m.ToggleAudio())
	assert.True(t, m.ToggleAudio())
	assert.False(t, m.ToggleVideo())
	assert.True(t, m.ToggleVideo())
	assert.Equal(t, before, m.State())
}

func TestLocalMedia_ToggleMirrorsTrack(t *testing.T) {
	d := &fakeDevices{}
	m := startedMedia(t, d)

	m.ToggleVideo()
	assert.False(t, d.cameras[0].tracks[1].Enabled())
	assert.False(t, m.State().VideoEnabled)
	assert.True(t, d.cameras[0].tracks[0].Enabled(), "audio untouched")
}

func TestLocalMedia_ToggleWithoutTrackIsNoop(t *testing.T) {
	m := NewLocalMedia(&fakeDevices{denyCamera: true})
	err := m.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrMediaAccessDenied)

	assert.False(t, m.ToggleAudio())
	assert.False(t, m.ToggleVideo())
	assert.Equal(t, MediaState{}, m.State())
}

func TestLocalMedia_ScreenShareRoundTrip(t *testing.T) {
	d := &fakeDevices{}
	m := startedMedia(t, d)
	camera := m.Preview()

	require.NoError(t, m.ToggleScreenShare(context.Background()))
	st := m.State()
	assert.True(t, st.Sharing)
	assert.Equal(t, PreviewDisplay, st.Preview)
	assert.Equal(t, d.lastDisplay(), m.Preview())

	require.NoError(t, m.ToggleScreenShare(context.Background()))
	st = m.State()
	assert.False(t, st.Sharing)
	assert.Equal(t, PreviewCamera, st.Preview)
	assert.Equal(t, camera, m.Preview())
	assert.True(t, d.lastDisplay().allStopped(), "no dangling display tracks")
	assert.False(t, d.cameras[0].allStopped())
}

func TestLocalMedia_ExternalStopRevertsToCamera(t *testing.T) {
	d := &fakeDevices{}
	m := startedMedia(t, d)

	var mu sync.Mutex
	var states []MediaState
	cancel := m.Subscribe(func(s MediaState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})
	defer cancel()

	require.NoError(t, m.ToggleScreenShare(context.Background()))
	d.lastDisplay().tracks[0].end()

	assert.Equal(t, PreviewCamera, m.State().Preview)
	assert.False(t, m.State().Sharing)
	assert.True(t, d.lastDisplay().allStopped())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.True(t, states[0].Sharing)
	assert.False(t, states[1].Sharing)
}

func TestLocalMedia_DisplayEndedBeforeCaptureReturns(t *testing.T) {
	d := &fakeDevices{endDisplayEarly: true}
	m := startedMedia(t, d)

	require.NoError(t, m.ToggleScreenShare(context.Background()))

	st := m.State()
	assert.False(t, st.Sharing)
	assert.Equal(t, PreviewCamera, st.Preview)
	assert.True(t, d.lastDisplay().allStopped())
	assert.Equal(t, "camera", m.Preview().ID())
}

func TestLocalMedia_ScreenShareDenied(t *testing.T) {
	m := startedMedia(t, &fakeDevices{denyDisplay: true})
	before := m.State()

	err := m.ToggleScreenShare(context.Background())
	assert.ErrorIs(t, err, domain.ErrScreenShareDenied)
	assert.Equal(t, "Failed to share screen", domain.UserMessage(err))
	assert.Equal(t, before, m.State())
}

func TestLocalMedia_TogglesWhileCaptureInFlightAreIgnored(t *testing.T) {
	d := &fakeDevices{gate: make(chan struct{}), displayCalled: make(chan struct{}, 4)}
	m := startedMedia(t, d)

	done := make(chan error, 1)
	go func() { done <- m.ToggleScreenShare(context.Background()) }()
	<-d.displayCalled

	require.NoError(t, m.ToggleScreenShare(context.Background()))
	require.NoError(t, m.ToggleScreenShare(context.Background()))
	assert.False(t, m.State().Sharing)

	close(d.gate)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("capture never finished")
	}
	assert.True(t, m.State().Sharing)
	assert.Equal(t, 1, d.displayCalls)
}

func TestLocalMedia_StopDuringCaptureReleasesLateStream(t *testing.T) {
	d := &fakeDevices{gate: make(chan struct{}), displayCalled: make(chan struct{}, 1)}
	m := startedMedia(t, d)

	done := make(chan error, 1)
	go func() { done <- m.ToggleScreenShare(context.Background()) }()
	<-d.displayCalled

	m.Stop()
	close(d.gate)
	require.NoError(t, <-done)

	assert.True(t, d.lastDisplay().allStopped())
	assert.True(t, d.cameras[0].allStopped())
	assert.Nil(t, m.Preview())
}

func TestLocalMedia_StopReleasesEverything(t *testing.T) {
	d := &fakeDevices{}
	m := startedMedia(t, d)
	require.NoError(t, m.ToggleScreenShare(context.Background()))

	m.Stop()
	m.Stop()
	assert.True(t, d.cameras[0].allStopped())
	assert.True(t, d.lastDisplay().allStopped())
	assert.Empty(t, m.Tracks())
	assert.Equal(t, PreviewNone, m.State().Preview)
}
