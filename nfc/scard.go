package nfc

import (
	"errors"

	"github.com/ebfe/scard"
)

// PC/SC backend built on the scard bindings. Everything here is a thin
// translation layer; the polling logic lives in pcsc.go against the
// Context/Channel interfaces.

type scardContext struct {
	ctx *scard.Context
}

func establishContext() (Context, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, err
	}
	return &scardContext{ctx: ctx}, nil
}

func (c *scardContext) ListReaders() ([]string, error) {
	readers, err := c.ctx.ListReaders()
	if errors.Is(err, scard.ErrNoReadersAvailable) {
		return nil, nil
	}
	return readers, err
}

func (c *scardContext) Connect(reader string) (Channel, error) {
	sc, err := c.ctx.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	if errors.Is(err, scard.ErrNoSmartcard) {
		return nil, ErrNoCard
	}
	if err != nil {
		return nil, err
	}
	return &scardChannel{card: sc}, nil
}

func (c *scardContext) Release() error {
	return c.ctx.Release()
}

type scardChannel struct {
	card *scard.Card
}

func (ch *scardChannel) Present() (bool, error) {
	_, err := ch.card.Status()
	if gone(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (ch *scardChannel) Transmit(apdu []byte) ([]byte, error) {
	response, err := ch.card.Transmit(apdu)
	if gone(err) {
		return nil, ErrCardRemoved
	}
	return response, err
}

func (ch *scardChannel) Disconnect() error {
	return ch.card.Disconnect(scard.LeaveCard)
}

// gone reports PC/SC conditions that mean the card left the reader.
func gone(err error) bool {
	return errors.Is(err, scard.ErrRemovedCard) ||
		errors.Is(err, scard.ErrResetCard) ||
		errors.Is(err, scard.ErrNoSmartcard)
}
