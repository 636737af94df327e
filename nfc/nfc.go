// Package nfc turns a flaky smartcard channel into a clean stream of card
// events for the player to consume.
package nfc

import "github.com/callebjorkell/musicbox/card"

type EventKind int

const (
	// CardPresent is emitted once when a new card lands on the reader.
	CardPresent EventKind = iota
	// Idle is emitted while nothing new happens (no card, or the same
	// card still sitting on the reader).
	Idle
	// Shutdown tells the run loop to stop.
	Shutdown
)

type Event struct {
	Kind EventKind
	Card card.ID
}

// Reader produces reader events one at a time. NextEvent blocks until it
// has something to report.
type Reader interface {
	NextEvent() (Event, error)
}
