package rtc

import (
	"context"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

func TestDevices_PermissionFlags(t *testing.T) {
	ctx := context.Background()

	_, err := (&Devices{Camera: true}).AcquireCameraAndMicrophone(ctx)
	assert.ErrorIs(t, err, domain.ErrMediaAccessDenied)

	_, err = (&Devices{Camera: true, Microphone: true}).AcquireDisplayCapture(ctx)
	assert.ErrorIs(t, err, domain.ErrScreenShareDenied)

	s, err := (&Devices{Camera: true, Microphone: true}).AcquireCameraAndMicrophone(ctx)
	require.NoError(t, err)
	assert.Len(t, s.AudioTracks(), 1)
	assert.Len(t, s.VideoTracks(), 1)
	assert.Len(t, s.Tracks(), 2)
}

func TestLocalTrack_EnableStop(t *testing.T) {
	tr, err := newLocalTrack(core.TrackKindAudio, "mic", "s1")
	require.NoError(t, err)
	assert.True(t, tr.Enabled())

	tr.SetEnabled(false)
	assert.False(t, tr.Enabled())
	assert.NoError(t, tr.WriteSample([]byte{1}, time.Millisecond), "disabled track drops frames")

	tr.SetEnabled(true)
	fired := false
	tr.OnEnded(func() { fired = true })
	tr.Stop()
	assert.True(t, tr.Stopped())
	assert.False(t, tr.Enabled())
	assert.False(t, fired, "stop does not fire ended hooks")
	assert.ErrorIs(t, tr.WriteSample([]byte{1}, time.Millisecond), ErrTrackStopped)

	tr.SetEnabled(true)
	assert.False(t, tr.Enabled(), "stopped track never restarts")
}

func TestDevices_EndDisplayCaptureFiresHooks(t *testing.T) {
	d := &Devices{Display: true}
	s, err := d.AcquireDisplayCapture(context.Background())
	require.NoError(t, err)

	ended := 0
	for _, tr := range s.Tracks() {
		tr.OnEnded(func() { ended++ })
	}
	d.EndDisplayCapture()
	d.EndDisplayCapture()

	assert.Equal(t, 1, ended)
	assert.True(t, s.VideoTracks()[0].Stopped())
}

func TestLocalTrack_OnEndedAfterEndRunsAtOnce(t *testing.T) {
	d := &Devices{Display: true}
	s, err := d.AcquireDisplayCapture(context.Background())
	require.NoError(t, err)
	d.EndDisplayCapture()

	ran := false
	s.VideoTracks()[0].OnEnded(func() { ran = true })
	assert.True(t, ran)

	cam, err := (&Devices{Camera: true, Microphone: true}).AcquireCameraAndMicrophone(context.Background())
	require.NoError(t, err)
	tr := cam.VideoTracks()[0]
	tr.Stop()
	tr.OnEnded(func() { t.Fatal("stop must not fire OnEnded") })
}

func TestPump_StopsWhenTracksStop(t *testing.T) {
	s, err := (&Devices{Camera: true, Microphone: true}).AcquireCameraAndMicrophone(context.Background())
	require.NoError(t, err)
	core.StopStream(s)

	done := make(chan struct{})
	go func() {
		Pump(context.Background(), s, time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pump did not stop")
	}
}

func TestPeerFactory_CloseIsIdempotent(t *testing.T) {
	f := &PeerFactory{Config: webrtc.Configuration{}}
	p, err := f.NewPeer("bob")
	require.NoError(t, err)

	closed := false
	p.OnClosed(func() { closed = true })
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.False(t, closed, "explicit close is not a termination")
	assert.Equal(t, domain.IdentityID("bob"), p.(*PeerHandle).Remote())
}

func TestConfigFor_DefaultsToSTUN(t *testing.T) {
	cfg := ConfigFor(nil)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{defaultSTUN}, cfg.ICEServers[0].URLs)

	cfg = ConfigFor([]string{"stun:a", "turn:b"})
	assert.Equal(t, []string{"stun:a", "turn:b"}, cfg.ICEServers[0].URLs)
}
