package core

import "github.com/semitha-uni-west/google-beet/internal/domain"

// PeerConnection is a handle on the media connection to one remote participant.
// Negotiation happens elsewhere; the holder only releases it.
type PeerConnection interface {
	Close() error
	// OnClosed sets a callback fired when the connection terminates on its own.
	OnClosed(func())
}

// PeerFactory creates a connection handle for a newly announced remote participant.
type PeerFactory interface {
	NewPeer(remote domain.IdentityID) (PeerConnection, error)
}
