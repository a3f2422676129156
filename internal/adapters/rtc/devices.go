package rtc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

// ErrTrackStopped is returned when writing to a stopped track.
var ErrTrackStopped = errors.New("track stopped")

// LocalTrack is a capture track backed by a pion sample track.
type LocalTrack struct {
	sample *webrtc.TrackLocalStaticSample
	kind   core.TrackKind

	mu      sync.Mutex
	enabled bool
	stopped bool
	ended   bool
	onEnded []func()
}

var _ core.Track = (*LocalTrack)(nil)

func newLocalTrack(kind core.TrackKind, label, streamID string) (*LocalTrack, error) {
	capability := webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}
	if kind == core.TrackKindVideo {
		capability = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}
	}
	sample, err := webrtc.NewTrackLocalStaticSample(capability, label+"-"+uuid.NewString(), streamID)
	if err != nil {
		return nil, err
	}
	return &LocalTrack{sample: sample, kind: kind, enabled: true}, nil
}

func (t *LocalTrack) ID() string           { return t.sample.ID() }
func (t *LocalTrack) Kind() core.TrackKind { return t.kind }

// Sample exposes the pion track for attaching to peer connections.
func (t *LocalTrack) Sample() *webrtc.TrackLocalStaticSample { return t.sample }

func (t *LocalTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *LocalTrack) SetEnabled(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.stopped {
		t.enabled = on
	}
}

func (t *LocalTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.enabled = false
}

func (t *LocalTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// OnEnded registers fn. If the source has already ended, fn runs at once.
func (t *LocalTrack) OnEnded(fn func()) {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		fn()
		return
	}
	t.onEnded = append(t.onEnded, fn)
	t.mu.Unlock()
}

// End simulates the source going away and fires the OnEnded hooks once.
func (t *LocalTrack) End() {
	t.mu.Lock()
	if t.ended || t.stopped {
		t.mu.Unlock()
		return
	}
	t.ended = true
	t.stopped = true
	t.enabled = false
	hooks := t.onEnded
	t.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// WriteSample forwards a captured frame. Frames of a disabled track are dropped.
func (t *LocalTrack) WriteSample(data []byte, d time.Duration) error {
	t.mu.Lock()
	stopped, enabled := t.stopped, t.enabled
	t.mu.Unlock()
	if stopped {
		return ErrTrackStopped
	}
	if !enabled {
		return nil
	}
	return t.sample.WriteSample(media.Sample{Data: data, Duration: d})
}

// LocalStream is the result of one capture request.
type LocalStream struct {
	id     string
	tracks []*LocalTrack
}

var _ core.Stream = (*LocalStream)(nil)

func (s *LocalStream) ID() string { return s.id }

func (s *LocalStream) Tracks() []core.Track {
	out := make([]core.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, t)
	}
	return out
}

func (s *LocalStream) byKind(kind core.TrackKind) []core.Track {
	var out []core.Track
	for _, t := range s.tracks {
		if t.kind == kind {
			out = append(out, t)
		}
	}
	return out
}

func (s *LocalStream) AudioTracks() []core.Track { return s.byKind(core.TrackKindAudio) }
func (s *LocalStream) VideoTracks() []core.Track { return s.byKind(core.TrackKindVideo) }

// LocalTracks returns the concrete tracks.
func (s *LocalStream) LocalTracks() []*LocalTrack { return s.tracks }

type trackSpec struct {
	kind  core.TrackKind
	label string
}

func newLocalStream(spec ...trackSpec) (*LocalStream, error) {
	s := &LocalStream{id: uuid.NewString()}
	for _, ts := range spec {
		t, err := newLocalTrack(ts.kind, ts.label, s.id)
		if err != nil {
			return nil, err
		}
		s.tracks = append(s.tracks, t)
	}
	return s, nil
}

// Devices is a headless capture source. Each flag says whether the user
// granted that device.
type Devices struct {
	Camera     bool
	Microphone bool
	Display    bool

	mu    sync.Mutex
	share *LocalStream
}

var _ core.MediaDevices = (*Devices)(nil)

// AcquireCameraAndMicrophone fails unless both devices are granted.
func (d *Devices) AcquireCameraAndMicrophone(ctx context.Context) (core.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.Camera || !d.Microphone {
		return nil, domain.ErrMediaAccessDenied
	}
	s, err := newLocalStream(trackSpec{core.TrackKindAudio, "mic"}, trackSpec{core.TrackKindVideo, "camera"})
	if err != nil {
		return nil, errors.Join(domain.ErrMediaAccessDenied, err)
	}
	log.Info().Str("module", "rtc.devices").Str("stream", s.id).Msg("camera and microphone acquired")
	return s, nil
}

func (d *Devices) AcquireDisplayCapture(ctx context.Context) (core.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.Display {
		return nil, domain.ErrScreenShareDenied
	}
	s, err := newLocalStream(trackSpec{core.TrackKindVideo, "display"})
	if err != nil {
		return nil, errors.Join(domain.ErrScreenShareDenied, err)
	}
	d.mu.Lock()
	d.share = s
	d.mu.Unlock()
	log.Info().Str("module", "rtc.devices").Str("stream", s.id).Msg("display capture acquired")
	return s, nil
}

// EndDisplayCapture ends the most recent display capture, as the OS
// "stop sharing" control would.
func (d *Devices) EndDisplayCapture() {
	d.mu.Lock()
	s := d.share
	d.share = nil
	d.mu.Unlock()
	if s == nil {
		return
	}
	for _, t := range s.tracks {
		t.End()
	}
}

// Pump feeds silent frames into every enabled track of s until ctx is done.
func Pump(ctx context.Context, s core.Stream, every time.Duration) {
	ls, ok := s.(*LocalStream)
	if !ok || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	frame := make([]byte, 3)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			live := 0
			for _, t := range ls.tracks {
				if err := t.WriteSample(frame, every); err == nil {
					live++
				} else if !errors.Is(err, ErrTrackStopped) {
					log.Debug().Err(err).Str("module", "rtc.devices").Msg("write sample")
				}
			}
			if live == 0 && allStopped(ls) {
				return
			}
		}
	}
}

func allStopped(s *LocalStream) bool {
	for _, t := range s.tracks {
		if !t.Stopped() {
			return false
		}
	}
	return true
}
