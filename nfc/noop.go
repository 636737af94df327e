package nfc

import (
	"os"
	"time"
)

// Noop is a reader for card-less environments. It idles forever, unless
// MUSICBOX_NOOP_SHUTDOWN is set in which case it asks the run loop to stop
// on the first call. Handy for development machines and the CLI tests.
type Noop struct {
	interval     time.Duration
	shutdownSent bool
}

func NewNoop(interval time.Duration) *Noop {
	return &Noop{interval: interval}
}

func (n *Noop) NextEvent() (Event, error) {
	if !n.shutdownSent {
		if v := os.Getenv("MUSICBOX_NOOP_SHUTDOWN"); v != "" && v != "0" {
			n.shutdownSent = true
			return Event{Kind: Shutdown}, nil
		}
	}
	time.Sleep(n.interval)
	return Event{Kind: Idle}, nil
}
