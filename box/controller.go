// Package box holds the playback state machine and the loop that feeds it
// with reader events.
package box

import (
	"errors"
	"fmt"

	"github.com/callebjorkell/musicbox/audio"
	"github.com/callebjorkell/musicbox/card"
)

// ErrTrackNotFound is returned when a tapped card has no mapping.
var ErrTrackNotFound = errors.New("no track mapped for card")

type ActionKind int

const (
	Started ActionKind = iota
	Stopped
	Switched
)

func (k ActionKind) String() string {
	switch k {
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	case Switched:
		return "switched"
	}
	return "unknown"
}

// Action is the outcome of one handled tap. For Switched, Card/Track hold
// the new pair and FromCard/FromTrack the one that was playing before.
type Action struct {
	Kind      ActionKind
	Card      card.ID
	Track     card.Track
	FromCard  card.ID
	FromTrack card.Track
}

func (a Action) String() string {
	switch a.Kind {
	case Switched:
		return fmt.Sprintf("switched %v (%v) -> %v (%v)", a.FromCard, a.FromTrack.Path, a.Card, a.Track.Path)
	default:
		return fmt.Sprintf("%v %v (%v)", a.Kind, a.Card, a.Track.Path)
	}
}

type activeTrack struct {
	card  card.ID
	track card.Track
}

// Controller decides what a card tap means: start, stop or switch. It
// believes at most one track is playing, and only moves that belief past a
// player call that actually succeeded. The controller does no locking of
// its own; callers that share it across goroutines serialize access with
// one mutex.
type Controller struct {
	library card.Library
	player  audio.Player
	active  *activeTrack
}

func New(library card.Library, player audio.Player) *Controller {
	return &Controller{library: library, player: player}
}

// HandleCard handles a single tap of the given card.
func (c *Controller) HandleCard(id card.ID) (Action, error) {
	if c.active != nil && c.active.card.Equal(id) {
		// same card again: toggle off
		if err := c.player.Stop(); err != nil {
			return Action{}, fmt.Errorf("stop playback: %w", err)
		}
		stopped := Action{Kind: Stopped, Card: c.active.card, Track: c.active.track}
		c.active = nil
		return stopped, nil
	}

	track, ok := c.library.Lookup(id)
	if !ok {
		return Action{}, fmt.Errorf("%w: %v", ErrTrackNotFound, id)
	}

	if c.active != nil {
		previous := *c.active
		if err := c.player.Stop(); err != nil {
			return Action{}, fmt.Errorf("stop playback: %w", err)
		}
		c.active = nil
		if err := c.player.Play(track); err != nil {
			return Action{}, fmt.Errorf("start playback: %w", err)
		}
		c.active = &activeTrack{card: id, track: track}
		return Action{
			Kind:      Switched,
			Card:      id,
			Track:     track,
			FromCard:  previous.card,
			FromTrack: previous.track,
		}, nil
	}

	if err := c.player.Play(track); err != nil {
		return Action{}, fmt.Errorf("start playback: %w", err)
	}
	c.active = &activeTrack{card: id, track: track}
	return Action{Kind: Started, Card: id, Track: track}, nil
}

// Pause stops whatever is playing. A nil action means there was nothing to
// pause, which is not an error.
func (c *Controller) Pause() (*Action, error) {
	if c.active == nil {
		return nil, nil
	}
	if err := c.player.Stop(); err != nil {
		return nil, fmt.Errorf("stop playback: %w", err)
	}
	stopped := Action{Kind: Stopped, Card: c.active.card, Track: c.active.track}
	c.active = nil
	return &stopped, nil
}

// Active returns the pair the controller believes is playing right now.
func (c *Controller) Active() (card.ID, card.Track, bool) {
	if c.active == nil {
		return nil, card.Track{}, false
	}
	return c.active.card, c.active.track, true
}

func (c *Controller) Entries() []card.Entry {
	return c.library.Entries()
}

// ReplaceLibrary swaps the whole mapping. The active track keeps playing
// even if its card is gone from the new library; only a tap or a pause
// stops it.
func (c *Controller) ReplaceLibrary(library card.Library) {
	c.library = library
}

// WaitForPlayer blocks until the player reports the current track is done.
func (c *Controller) WaitForPlayer() error {
	return c.player.WaitUntilDone()
}
