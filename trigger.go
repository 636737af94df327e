package main

import (
	"github.com/callebjorkell/musicbox/audio"
	"github.com/callebjorkell/musicbox/box"
	"github.com/callebjorkell/musicbox/card"
	"github.com/callebjorkell/musicbox/config"
	log "github.com/sirupsen/logrus"
)

// Simulates a tap without any reader hardware, then blocks until the track
// has played through.
func triggerTap() {
	cfg, err := config.Load(*triggerConfig)
	if err != nil {
		log.Fatal(err)
	}
	library, err := cfg.Library()
	if err != nil {
		log.Fatal(err)
	}

	id, err := card.ParseID(*triggerCard)
	if err != nil {
		log.Fatal(err)
	}

	var player audio.Player
	if *triggerSilent {
		player = audio.Silent{}
	} else {
		beep, err := audio.NewBeep()
		if err != nil {
			log.Fatal(err)
		}
		player = beep
	}

	controller := box.New(library, player)
	action, err := controller.HandleCard(id)
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Card handled: %v", action)

	if err := controller.WaitForPlayer(); err != nil {
		log.Fatal(err)
	}
}
