// Package display renders controller status on an attached panel. The box
// normally carries a small e-ink HAT, but a console backend exists for
// development machines.
package display

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/callebjorkell/musicbox/box"
	log "github.com/sirupsen/logrus"
)

type StatusDisplay interface {
	Update(snapshot box.Snapshot) error
	Close() error
}

// StatusLines formats a snapshot as the short lines shown on the panel.
func StatusLines(snapshot box.Snapshot) []string {
	state, cardLine, trackLine := "Waiting", "-", "-"
	if action := snapshot.LastAction; action != nil {
		switch action.Kind {
		case box.Started:
			state = "Playing"
			cardLine = action.Card.String()
			trackLine = filepath.Base(action.Track.Path)
		case box.Switched:
			state = "Switched"
			cardLine = action.Card.String()
			trackLine = filepath.Base(action.Track.Path)
		case box.Stopped:
			state = "Stopped"
		}
	}

	updated := "Updated: -"
	if !snapshot.LastUpdate.IsZero() {
		age := time.Since(snapshot.LastUpdate)
		if age < time.Second {
			updated = "Updated: just now"
		} else {
			updated = fmt.Sprintf("Updated: %ds ago", int(age.Seconds()))
		}
	}

	return []string{
		"Musicbox",
		"State: " + state,
		fmt.Sprintf("Idle polls: %d", snapshot.IdleEvents),
		"Card: " + cardLine,
		"Track: " + trackLine,
		updated,
	}
}

// Console writes the status lines to the log instead of a panel.
type Console struct{}

func (Console) Update(snapshot box.Snapshot) error {
	for _, line := range StatusLines(snapshot) {
		log.Infof("status: %v", line)
	}
	return nil
}

func (Console) Close() error {
	return nil
}
