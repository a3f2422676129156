package core

import "context"

type TrackKind string

const (
	TrackKindAudio TrackKind = "audio"
	TrackKindVideo TrackKind = "video"
)

// Track is one local capture track.
type Track interface {
	ID() string
	Kind() TrackKind
	Enabled() bool
	// SetEnabled mutes or unmutes without releasing the device.
	SetEnabled(bool)
	// Stop releases the device. A stopped track never restarts.
	Stop()
	Stopped() bool
	// OnEnded registers a hook fired once when the source goes away on its own
	// (e.g. the OS "stop sharing" control). Stop does not fire it.
	OnEnded(func())
}

// Stream groups the tracks of one capture request.
type Stream interface {
	ID() string
	Tracks() []Track
	AudioTracks() []Track
	VideoTracks() []Track
}

// MediaDevices is the capture API of the host platform.
type MediaDevices interface {
	AcquireCameraAndMicrophone(ctx context.Context) (Stream, error)
	AcquireDisplayCapture(ctx context.Context) (Stream, error)
}

// StopStream stops every track of s. Nil safe.
func StopStream(s Stream) {
	if s == nil {
		return
	}
	for _, t := range s.Tracks() {
		t.Stop()
	}
}
