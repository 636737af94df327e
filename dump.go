package main

import (
	"fmt"

	"github.com/callebjorkell/musicbox/box"
	"github.com/callebjorkell/musicbox/config"
	log "github.com/sirupsen/logrus"
)

func dumpCards() {
	cfg, err := config.Load(*dumpConfig)
	if err != nil {
		log.Fatal(err)
	}
	library, err := cfg.Library()
	if err != nil {
		log.Fatal(err)
	}

	entries := library.Entries()
	if len(entries) == 0 {
		fmt.Println("No cards configured...")
	} else {
		fmt.Println("      Card │ Track")
		fmt.Println("───────────┼──────────────────────")
		for _, e := range entries {
			fmt.Printf("%10v │ %v\n", e.Card, e.Track.Path)
		}
	}

	if *dumpHist {
		dumpHistory()
	}
}

func dumpHistory() {
	history, err := box.OpenHistory(*dumpHistDb)
	if err != nil {
		log.Fatal(err)
	}
	defer history.Close()

	entries, err := history.Recent(20)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println()
	if len(entries) == 0 {
		fmt.Println("No recorded actions...")
		return
	}
	for _, e := range entries {
		fmt.Printf("%v  %-8v %10v  %v\n", e.Time.Format("2006-01-02 15:04:05"), e.Action, e.Card, e.Track)
	}
}
