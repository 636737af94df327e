// Package audio abstracts playback so the controller never touches a
// concrete sound backend.
package audio

import "github.com/callebjorkell/musicbox/card"

// Player is the playback capability consumed by the controller. Errors are
// opaque backend failures carrying a human readable message.
type Player interface {
	Play(track card.Track) error
	Stop() error
	// WaitUntilDone blocks until the current track has finished. Backends
	// without a notion of completion return immediately.
	WaitUntilDone() error
}
