package nfc

import (
	"errors"
	"fmt"
	"time"

	"github.com/callebjorkell/musicbox/card"
	log "github.com/sirupsen/logrus"
)

// GET DATA, returns the UID of the card on a contactless interface.
var uidRequest = []byte{0xFF, 0xCA, 0x00, 0x00, 0x00}

var (
	// ErrNoCard means a channel could not be opened because no card is
	// seated on the reader. The driver absorbs it and keeps polling.
	ErrNoCard = errors.New("no card on reader")
	// ErrCardRemoved means the card left (or was reset) mid-exchange. The
	// driver drops the channel and keeps polling.
	ErrCardRemoved = errors.New("card removed")
)

// StatusError is a card response that did not end in 9000.
type StatusError struct {
	SW1, SW2 byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("card response status %02X%02X", e.SW1, e.SW2)
}

// retryable reports status words that mean "ask again", seen from some
// readers while a card is still settling on the antenna.
func (e *StatusError) retryable() bool {
	return e.SW1 == 0x63 && e.SW2 == 0x00
}

// Context lists readers and opens card channels. It is satisfied by the
// PC/SC backend and by fakes in tests.
type Context interface {
	ListReaders() ([]string, error)
	Connect(reader string) (Channel, error)
	Release() error
}

// Channel is a connected card.
type Channel interface {
	// Present reports whether the card is still physically on the reader.
	Present() (bool, error)
	Transmit(apdu []byte) ([]byte, error)
	Disconnect() error
}

// PCSC polls a PC/SC reader and reports each physical tap exactly once.
// The driver flips between disconnected and connected, remembers the last
// UID it reported, and swallows all the churn of cards being lifted on and
// off the reader.
type PCSC struct {
	ctx      Context
	channel  Channel
	lastSeen card.ID
	interval time.Duration
}

// NewPCSC opens the system PC/SC context and returns a polling reader with
// the given poll interval.
func NewPCSC(interval time.Duration) (*PCSC, error) {
	ctx, err := establishContext()
	if err != nil {
		return nil, fmt.Errorf("establish PC/SC context: %w", err)
	}
	return newPCSC(ctx, interval), nil
}

func newPCSC(ctx Context, interval time.Duration) *PCSC {
	return &PCSC{ctx: ctx, interval: interval}
}

// NextEvent blocks until the reader state changes in a way the caller
// cares about. Transient conditions (no reader, no card, card removed,
// retry statuses) never surface; only genuine backend failures do.
func (r *PCSC) NextEvent() (Event, error) {
	for {
		event, ok, err := r.poll()
		if err != nil {
			return Event{}, err
		}
		if ok {
			return event, nil
		}
		time.Sleep(r.interval)
	}
}

func (r *PCSC) Close() error {
	if r.channel != nil {
		r.channel.Disconnect()
		r.channel = nil
	}
	return r.ctx.Release()
}

// poll is one step of the state machine. It returns (event, true) when
// there is something to report, and (zero, false) when the caller should
// sleep and poll again.
func (r *PCSC) poll() (Event, bool, error) {
	if r.channel == nil {
		if err := r.connect(); err != nil {
			return Event{}, false, err
		}
		if r.channel == nil {
			return Event{}, false, nil
		}
	}

	present, err := r.channel.Present()
	if err != nil {
		return Event{}, false, err
	}
	if !present {
		log.Debug("card gone, dropping channel")
		r.disconnect()
		return Event{}, false, nil
	}

	uid, err := r.readUID()
	if err != nil {
		var status *StatusError
		switch {
		case errors.Is(err, ErrCardRemoved):
			r.disconnect()
			return Event{}, false, nil
		case errors.As(err, &status) && status.retryable():
			log.Debugf("reader asked for a retry (%v), dropping channel", status)
			r.disconnect()
			return Event{}, false, nil
		default:
			return Event{}, false, err
		}
	}

	if r.lastSeen != nil && r.lastSeen.Equal(uid) {
		// same card still sitting on the reader, one tap is one event
		return Event{Kind: Idle}, true, nil
	}
	r.lastSeen = uid
	log.Debugf("new card %v", uid)
	return Event{Kind: CardPresent, Card: uid}, true, nil
}

func (r *PCSC) connect() error {
	readers, err := r.ctx.ListReaders()
	if err != nil {
		return fmt.Errorf("list readers: %w", err)
	}
	if len(readers) == 0 {
		return nil
	}

	channel, err := r.ctx.Connect(readers[0])
	if errors.Is(err, ErrNoCard) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("connect to %v: %w", readers[0], err)
	}

	r.channel = channel
	r.lastSeen = nil
	return nil
}

func (r *PCSC) disconnect() {
	if r.channel != nil {
		r.channel.Disconnect()
		r.channel = nil
	}
	r.lastSeen = nil
}

func (r *PCSC) readUID() (card.ID, error) {
	response, err := r.channel.Transmit(uidRequest)
	if err != nil {
		return nil, err
	}
	if len(response) < 2 {
		return nil, fmt.Errorf("card UID response too short (%v bytes)", len(response))
	}

	data, sw1, sw2 := response[:len(response)-2], response[len(response)-2], response[len(response)-1]
	if sw1 != 0x90 || sw2 != 0x00 {
		return nil, &StatusError{SW1: sw1, SW2: sw2}
	}
	return card.ID(data), nil
}
