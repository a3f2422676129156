package meeting

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

type Preview int

const (
	PreviewNone Preview = iota
	PreviewCamera
	PreviewDisplay
)

func (p Preview) String() string {
	switch p {
	case PreviewCamera:
		return "camera"
	case PreviewDisplay:
		return "display"
	default:
		return "none"
	}
}

// MediaState is what the local controls and preview render.
type MediaState struct {
	AudioEnabled bool
	VideoEnabled bool
	Sharing      bool
	Preview      Preview
}

// LocalMedia owns the local camera and display capture of one session.
// Toggles change local state only.
type LocalMedia struct {
	devices core.MediaDevices

	mu       sync.Mutex
	camera   core.Stream
	display  core.Stream
	audioOn  bool
	videoOn  bool
	inFlight bool
	stopped  bool
	seq      int
	subs     map[int]func(MediaState)
}

func NewLocalMedia(devices core.MediaDevices) *LocalMedia {
	return &LocalMedia{devices: devices, subs: make(map[int]func(MediaState))}
}

// Start acquires camera and microphone. Failures wrap domain.ErrMediaAccessDenied.
func (m *LocalMedia) Start(ctx context.Context) error {
	s, err := m.devices.AcquireCameraAndMicrophone(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrMediaAccessDenied) {
			err = fmt.Errorf("%w: %w", domain.ErrMediaAccessDenied, err)
		}
		return err
	}

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		core.StopStream(s)
		return nil
	}
	core.StopStream(m.camera)
	m.camera = s
	m.audioOn = firstEnabled(s.AudioTracks())
	m.videoOn = firstEnabled(s.VideoTracks())
	st := m.stateLocked()
	m.mu.Unlock()

	m.notify(st)
	return nil
}

func firstEnabled(tracks []core.Track) bool {
	return len(tracks) > 0 && tracks[0].Enabled()
}

func first(tracks []core.Track) core.Track {
	if len(tracks) == 0 {
		return nil
	}
	return tracks[0]
}

func (m *LocalMedia) stateLocked() MediaState {
	st := MediaState{AudioEnabled: m.audioOn, VideoEnabled: m.videoOn, Sharing: m.display != nil}
	switch {
	case m.display != nil:
		st.Preview = PreviewDisplay
	case m.camera != nil:
		st.Preview = PreviewCamera
	}
	return st
}

func (m *LocalMedia) State() MediaState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Subscribe registers fn for every state change until cancel is called.
func (m *LocalMedia) Subscribe(fn func(MediaState)) (cancel func()) {
	m.mu.Lock()
	m.seq++
	id := m.seq
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *LocalMedia) notify(st MediaState) {
	m.mu.Lock()
	subs := make([]func(MediaState), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()
	for _, fn := range subs {
		fn(st)
	}
}

func (m *LocalMedia) toggle(kind core.TrackKind) bool {
	m.mu.Lock()
	var t core.Track
	if m.camera != nil {
		if kind == core.TrackKindAudio {
			t = first(m.camera.AudioTracks())
		} else {
			t = first(m.camera.VideoTracks())
		}
	}
	if t == nil || m.stopped {
		st := m.stateLocked()
		m.mu.Unlock()
		if kind == core.TrackKindAudio {
			return st.AudioEnabled
		}
		return st.VideoEnabled
	}
	on := !t.Enabled()
	t.SetEnabled(on)
	if kind == core.TrackKindAudio {
		m.audioOn = on
	} else {
		m.videoOn = on
	}
	st := m.stateLocked()
	m.mu.Unlock()

	m.notify(st)
	return on
}

// ToggleAudio flips the first microphone track and returns the new flag.
// Without a track it changes nothing.
func (m *LocalMedia) ToggleAudio() bool { return m.toggle(core.TrackKindAudio) }

// ToggleVideo flips the first camera track and returns the new flag.
func (m *LocalMedia) ToggleVideo() bool { return m.toggle(core.TrackKindVideo) }

// ToggleScreenShare enters or leaves share mode. A call made while a display
// capture request is pending is ignored. A refused capture fails with
// domain.ErrScreenShareDenied and leaves the state as it was.
func (m *LocalMedia) ToggleScreenShare(ctx context.Context) error {
	m.mu.Lock()
	if m.inFlight || m.stopped {
		m.mu.Unlock()
		log.Debug().Str("module", "meeting.media").Msg("screen share toggle ignored")
		return nil
	}
	if m.display != nil {
		m.mu.Unlock()
		m.StopScreenShare()
		return nil
	}
	m.inFlight = true
	m.mu.Unlock()

	s, err := m.devices.AcquireDisplayCapture(ctx)

	m.mu.Lock()
	m.inFlight = false
	if err != nil {
		m.mu.Unlock()
		if !errors.Is(err, domain.ErrScreenShareDenied) {
			err = fmt.Errorf("%w: %w", domain.ErrScreenShareDenied, err)
		}
		return err
	}
	if m.stopped {
		m.mu.Unlock()
		core.StopStream(s)
		return nil
	}
	m.display = s
	st := m.stateLocked()
	m.mu.Unlock()

	t := first(s.VideoTracks())
	if t != nil {
		t.OnEnded(func() { m.endShare(s) })
	}
	log.Info().Str("module", "meeting.media").Str("stream", s.ID()).Msg("screen share started")
	m.notify(st)
	// The source may have ended before the hook was attached.
	if t != nil && t.Stopped() {
		m.endShare(s)
	}
	return nil
}

// StopScreenShare stops every display track and returns the preview to the camera.
func (m *LocalMedia) StopScreenShare() {
	m.mu.Lock()
	s := m.display
	m.mu.Unlock()
	if s != nil {
		m.endShare(s)
	}
}

// endShare is a no-op unless s is still the active display stream.
func (m *LocalMedia) endShare(s core.Stream) {
	m.mu.Lock()
	if m.display != s {
		m.mu.Unlock()
		return
	}
	m.display = nil
	st := m.stateLocked()
	m.mu.Unlock()

	core.StopStream(s)
	log.Info().Str("module", "meeting.media").Str("stream", s.ID()).Msg("screen share stopped")
	m.notify(st)
}

// Preview returns the stream attached to the local preview.
func (m *LocalMedia) Preview() core.Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.display != nil {
		return m.display
	}
	return m.camera
}

// Tracks lists every local track, camera first.
func (m *LocalMedia) Tracks() []core.Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Track
	if m.camera != nil {
		out = append(out, m.camera.Tracks()...)
	}
	if m.display != nil {
		out = append(out, m.display.Tracks()...)
	}
	return out
}

// Stop releases camera and display capture. The controller is unusable afterwards.
func (m *LocalMedia) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	camera, display := m.camera, m.display
	m.camera, m.display = nil, nil
	m.audioOn, m.videoOn = false, false
	st := m.stateLocked()
	m.mu.Unlock()

	core.StopStream(display)
	core.StopStream(camera)
	m.notify(st)
}
