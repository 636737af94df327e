// Package ui drives the status LED and the physical pause button. Real
// hardware is only wired up in builds with the pi tag; everything else gets
// logging stubs.
package ui

// StatusLed shows the box state at a glance: green while a track plays,
// blue while waiting for a card, red when something broke.
type StatusLed interface {
	Playing()
	Idle()
	Error()
	Off()
}
