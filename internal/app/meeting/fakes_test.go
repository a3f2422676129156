package meeting

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/semitha-uni-west/google-beet/internal/adapters/store"
	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

type fakeTrack struct {
	id   string
	kind core.TrackKind

	mu      sync.Mutex
	enabled bool
	stopped bool
	onEnded []func()
}

func (t *fakeTrack) ID() string           { return t.id }
func (t *fakeTrack) Kind() core.TrackKind { return t.kind }

func (t *fakeTrack) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *fakeTrack) SetEnabled(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = on
}

func (t *fakeTrack) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTrack) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (t *fakeTrack) OnEnded(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEnded = append(t.onEnded, fn)
}

// end plays the OS stopping the capture.
func (t *fakeTrack) end() {
	t.mu.Lock()
	t.stopped = true
	hooks := t.onEnded
	t.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

type fakeStream struct {
	id     string
	tracks []*fakeTrack
}

func (s *fakeStream) ID() string { return s.id }

func (s *fakeStream) Tracks() []core.Track {
	out := make([]core.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, t)
	}
	return out
}

func (s *fakeStream) of(kind core.TrackKind) []core.Track {
	var out []core.Track
	for _, t := range s.tracks {
		if t.kind == kind {
			out = append(out, t)
		}
	}
	return out
}

func (s *fakeStream) AudioTracks() []core.Track { return s.of(core.TrackKindAudio) }
func (s *fakeStream) VideoTracks() []core.Track { return s.of(core.TrackKindVideo) }

func (s *fakeStream) allStopped() bool {
	for _, t := range s.tracks {
		if !t.Stopped() {
			return false
		}
	}
	return true
}

type fakeDevices struct {
	denyCamera  bool
	denyDisplay bool
	// gate, when set, blocks display capture until closed.
	gate chan struct{}
	// endDisplayEarly ends the display source before the capture returns.
	endDisplayEarly bool

	mu            sync.Mutex
	cameras       []*fakeStream
	displays      []*fakeStream
	displayCalls  int
	displayCalled chan struct{}
}

func (d *fakeDevices) AcquireCameraAndMicrophone(context.Context) (core.Stream, error) {
	if d.denyCamera {
		return nil, errors.New("NotAllowedError")
	}
	s := &fakeStream{id: "camera", tracks: []*fakeTrack{
		{id: "mic", kind: core.TrackKindAudio, enabled: true},
		{id: "cam", kind: core.TrackKindVideo, enabled: true},
	}}
	d.mu.Lock()
	d.cameras = append(d.cameras, s)
	d.mu.Unlock()
	return s, nil
}

func (d *fakeDevices) AcquireDisplayCapture(ctx context.Context) (core.Stream, error) {
	d.mu.Lock()
	d.displayCalls++
	called := d.displayCalled
	d.mu.Unlock()
	if called != nil {
		called <- struct{}{}
	}
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.denyDisplay {
		return nil, domain.ErrScreenShareDenied
	}
	s := &fakeStream{id: "display", tracks: []*fakeTrack{
		{id: "screen", kind: core.TrackKindVideo, enabled: true},
		{id: "system-audio", kind: core.TrackKindAudio, enabled: true},
	}}
	d.mu.Lock()
	d.displays = append(d.displays, s)
	d.mu.Unlock()
	if d.endDisplayEarly {
		s.tracks[0].end()
	}
	return s, nil
}

func (d *fakeDevices) lastDisplay() *fakeStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.displays) == 0 {
		return nil
	}
	return d.displays[len(d.displays)-1]
}

type fakePeer struct {
	mu       sync.Mutex
	closed   int
	onClosed func()
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *fakePeer) OnClosed(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClosed = fn
}

func (p *fakePeer) terminate() {
	p.mu.Lock()
	fn := p.onClosed
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *fakePeer) closeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

type fakePeers struct {
	mu    sync.Mutex
	peers map[domain.IdentityID]*fakePeer
}

func (f *fakePeers) NewPeer(remote domain.IdentityID) (core.PeerConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.peers == nil {
		f.peers = make(map[domain.IdentityID]*fakePeer)
	}
	p := &fakePeer{}
	f.peers[remote] = p
	return p, nil
}

func (f *fakePeers) get(id domain.IdentityID) *fakePeer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.peers[id]
}

type fakeIdentity struct {
	who       *domain.Identity
	err       error
	signedOut bool
}

func (f *fakeIdentity) CurrentIdentity(context.Context) (*domain.Identity, error) {
	return f.who, f.err
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.signedOut = true
	f.who = nil
	return nil
}

type recordingNav struct {
	mu     sync.Mutex
	routes []domain.Route
}

func (n *recordingNav) Navigate(r domain.Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, r)
}

func (n *recordingNav) last() domain.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

// flakyStore fails departure writes, optionally after a delay.
type flakyStore struct {
	*store.MemoryStore
	delay time.Duration
}

func (s *flakyStore) MarkLeft(ctx context.Context, _ domain.MeetingID, _ domain.IdentityID, _ time.Time) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return errors.New("connection reset by peer")
}
