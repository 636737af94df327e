package box

import (
	"fmt"
	"sync"

	"github.com/callebjorkell/musicbox/nfc"
)

type Outcome int

const (
	OutcomeAction Outcome = iota
	OutcomeIdle
	OutcomeShutdown
)

// ProcessNextEvent pulls one event from the reader and feeds it to the
// controller. The mutex is held only around the controller call, so other
// surfaces (web API, pause button) can interleave between events.
func ProcessNextEvent(mu sync.Locker, c *Controller, reader nfc.Reader) (Outcome, *Action, error) {
	event, err := reader.NextEvent()
	if err != nil {
		return 0, nil, fmt.Errorf("reader: %w", err)
	}

	switch event.Kind {
	case nfc.CardPresent:
		mu.Lock()
		action, err := c.HandleCard(event.Card)
		mu.Unlock()
		if err != nil {
			return 0, nil, fmt.Errorf("controller: %w", err)
		}
		return OutcomeAction, &action, nil
	case nfc.Idle:
		return OutcomeIdle, nil, nil
	case nfc.Shutdown:
		return OutcomeShutdown, nil, nil
	default:
		return 0, nil, fmt.Errorf("unknown reader event %v", event.Kind)
	}
}

// Run drives the controller until the reader reports shutdown. Actions go
// to onAction, idle ticks to onIdle (which typically sleeps and records
// telemetry). The first reader or controller error aborts the loop.
func Run(mu sync.Locker, c *Controller, reader nfc.Reader, onAction func(Action), onIdle func()) error {
	for {
		outcome, action, err := ProcessNextEvent(mu, c, reader)
		if err != nil {
			return err
		}
		switch outcome {
		case OutcomeAction:
			onAction(*action)
		case OutcomeIdle:
			onIdle()
		case OutcomeShutdown:
			return nil
		}
	}
}
