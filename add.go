package main

import (
	"fmt"
	"time"

	"github.com/callebjorkell/musicbox/card"
	"github.com/callebjorkell/musicbox/config"
	"github.com/callebjorkell/musicbox/nfc"
	log "github.com/sirupsen/logrus"
)

func addCardMapping() {
	var id card.ID
	if *addCardId != "" {
		parsed, err := card.ParseID(*addCardId)
		if err != nil {
			log.Fatal(err)
		}
		id = parsed
	} else {
		id = awaitCard()
	}

	if err := config.AddCard(*addConfig, id, *addTrack); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Mapped card %v to %v\n", id, *addTrack)
}

func awaitCard() card.ID {
	reader, err := nfc.NewPCSC(250 * time.Millisecond)
	if err != nil {
		log.Fatal(err)
	}
	defer reader.Close()

	log.Info("Hold the card against the reader...")
	for {
		event, err := reader.NextEvent()
		if err != nil {
			log.Fatal(err)
		}
		if event.Kind == nfc.CardPresent {
			return event.Card
		}
	}
}
