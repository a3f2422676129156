// Package rtc adapts pion/webrtc to the peer and capture ports.
package rtc

import (
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/semitha-uni-west/google-beet/internal/core"
	"github.com/semitha-uni-west/google-beet/internal/domain"
)

const defaultSTUN = "stun:stun.l.google.com:19302"

func DefaultWebRTCConfig() webrtc.Configuration {
	return ConfigFor(nil)
}

// ConfigFor builds a pion configuration from ICE server URLs.
func ConfigFor(iceServers []string) webrtc.Configuration {
	if len(iceServers) == 0 {
		iceServers = []string{defaultSTUN}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: iceServers}},
	}
}

// PeerHandle owns the pion connection to one remote participant.
type PeerHandle struct {
	pc     *webrtc.PeerConnection
	remote domain.IdentityID

	mu       sync.Mutex
	closed   bool
	onClosed func()
}

var _ core.PeerConnection = (*PeerHandle)(nil)

func newPeerHandle(pc *webrtc.PeerConnection, remote domain.IdentityID) *PeerHandle {
	h := &PeerHandle{pc: pc, remote: remote}
	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		log.Info().Str("module", "webrtc").Str("remote", string(remote)).Str("peer_connection_state", s.String()).Msg("Peer state")
		if s == webrtc.PeerConnectionStateFailed || s == webrtc.PeerConnectionStateClosed {
			h.terminated()
		}
	})
	return h
}

// terminated runs the OnClosed callback unless Close got there first.
func (h *PeerHandle) terminated() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	fn := h.onClosed
	h.mu.Unlock()

	if err := h.pc.Close(); err != nil {
		log.Error().Err(err).Str("module", "webrtc").Str("remote", string(h.remote)).Msg("close after failure")
	}
	if fn != nil {
		fn()
	}
}

func (h *PeerHandle) Remote() domain.IdentityID { return h.remote }

func (h *PeerHandle) ConnectionState() webrtc.PeerConnectionState {
	return h.pc.ConnectionState()
}

// AddLocalTrack attaches a local track so it is offered once negotiation runs.
func (h *PeerHandle) AddLocalTrack(track webrtc.TrackLocal) (*webrtc.RTPSender, error) {
	return h.pc.AddTrack(track)
}

func (h *PeerHandle) OnClosed(fn func()) {
	h.mu.Lock()
	h.onClosed = fn
	h.mu.Unlock()
}

// Close releases the connection. It does not fire OnClosed.
func (h *PeerHandle) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	h.mu.Unlock()

	err := h.pc.Close()
	if err != nil {
		log.Error().Err(err).Str("module", "webrtc").Str("remote", string(h.remote)).Msg("close error")
	} else {
		log.Info().Str("module", "webrtc").Str("remote", string(h.remote)).Msg("closed")
	}
	return err
}

// PeerFactory creates one pion connection per announced remote participant
// and attaches the local tracks returned by Tracks, if set.
type PeerFactory struct {
	Config webrtc.Configuration
	Tracks func() []webrtc.TrackLocal
}

var _ core.PeerFactory = (*PeerFactory)(nil)

func NewPeerFactory(iceServers []string) *PeerFactory {
	return &PeerFactory{Config: ConfigFor(iceServers)}
}

func (f *PeerFactory) NewPeer(remote domain.IdentityID) (core.PeerConnection, error) {
	pc, err := webrtc.NewPeerConnection(f.Config)
	if err != nil {
		return nil, err
	}
	h := newPeerHandle(pc, remote)
	if f.Tracks != nil {
		for _, t := range f.Tracks() {
			if _, err := h.AddLocalTrack(t); err != nil {
				_ = h.Close()
				return nil, err
			}
		}
	}
	log.Info().Str("module", "webrtc").Str("remote", string(remote)).Msg("peer created")
	return h, nil
}
