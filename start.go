package main

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/callebjorkell/musicbox/audio"
	"github.com/callebjorkell/musicbox/box"
	"github.com/callebjorkell/musicbox/config"
	"github.com/callebjorkell/musicbox/display"
	"github.com/callebjorkell/musicbox/nfc"
	"github.com/callebjorkell/musicbox/ui"
	"github.com/callebjorkell/musicbox/web"
	log "github.com/sirupsen/logrus"
)

func startBox() {
	cfg, err := config.Load(*startConfig)
	if err != nil {
		log.Fatal(err)
	}
	library, err := cfg.Library()
	if err != nil {
		log.Fatal(err)
	}
	log.Infof("Loaded %v card mappings from %v", library.Len(), *startConfig)

	player := makePlayer(cfg)
	controller := box.New(library, player)
	mu := &sync.Mutex{}

	status := box.NewStatus()
	metrics := web.NewMetrics()

	history, err := box.OpenHistory(*startHistDb)
	if err != nil {
		log.Fatal(err)
	}
	defer history.Close()

	interval := time.Duration(*pollInterval) * time.Millisecond
	reader := makeReader(interval)
	if c, ok := reader.(io.Closer); ok {
		defer c.Close()
	}

	led := ui.InitLed()
	led.Idle()

	disp := makeDisplay()

	shutdown := func() {
		mu.Lock()
		if _, err := controller.Pause(); err != nil {
			log.Warnf("Unable to stop playback: %v", err)
		}
		mu.Unlock()
		led.Off()
		if disp != nil {
			if err := disp.Close(); err != nil {
				log.Warnf("Unable to shut the display down: %v", err)
			}
		}
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		log.Info("Shutting down")
		shutdown()
		os.Exit(0)
	}()

	if *debugAddr != "" {
		srv := &web.Server{
			Mu:         mu,
			Controller: controller,
			Status:     status,
			Metrics:    metrics,
			ConfigPath: *startConfig,
		}
		go srv.Serve(*debugAddr)
	}

	if pauses, err := ui.InitPauseButton(); err != nil {
		log.Warnf("Pause button unavailable: %v", err)
	} else {
		go func() {
			for range pauses {
				mu.Lock()
				action, err := controller.Pause()
				mu.Unlock()
				if err != nil {
					log.Errorf("Pause button: %v", err)
					continue
				}
				if action != nil {
					log.Infof("Pause button: %v", action)
					status.RecordAction(*action)
					metrics.RecordAction(*action)
					led.Idle()
				}
			}
		}()
	}

	refresh := func() {
		if disp == nil {
			return
		}
		if err := disp.Update(status.Snapshot()); err != nil {
			log.Warnf("Unable to update the display: %v", err)
		}
	}

	var idleTicks int
	onAction := func(action box.Action) {
		log.Infof("Card handled: %v", action)
		status.RecordAction(action)
		metrics.RecordAction(action)
		if err := history.Append(action); err != nil {
			log.Warnf("Unable to record history: %v", err)
		}
		if action.Kind == box.Stopped {
			led.Idle()
		} else {
			led.Playing()
		}
		refresh()
	}
	onIdle := func() {
		status.RecordIdle()
		metrics.RecordIdle()
		idleTicks++
		// e-ink refreshes are slow and wear the panel, so only every 100th
		if idleTicks%100 == 0 {
			refresh()
		}
	}

	refresh()
	log.Info("Musicbox started, waiting for cards")
	if err := box.Run(mu, controller, reader, onAction, onIdle); err != nil {
		led.Error()
		log.Fatal(err)
	}
	shutdown()
}

func makePlayer(cfg *config.Config) audio.Player {
	if *silent {
		return audio.Silent{}
	}
	if *sonosZone != "" {
		if *sonosBase == "" {
			log.Fatal("Sonos playback needs --sonos-base to serve tracks from")
		}
		player, err := audio.NewSonos(*sonosZone, cfg.MusicDir, *sonosBase)
		if err != nil {
			log.Fatal(err)
		}
		return player
	}
	player, err := audio.NewBeep()
	if err != nil {
		log.Fatal(err)
	}
	return player
}

func makeReader(interval time.Duration) nfc.Reader {
	switch *readerKind {
	case "pcsc":
		reader, err := nfc.NewPCSC(interval)
		if err != nil {
			log.Fatal(err)
		}
		return reader
	case "none":
		return nfc.NewNoop(interval)
	default:
		reader, err := nfc.NewPCSC(interval)
		if err != nil {
			log.Warnf("No PC/SC reader available, idling without one: %v", err)
			return nfc.NewNoop(interval)
		}
		return reader
	}
}

func makeDisplay() display.StatusDisplay {
	if !*withDisplay {
		return nil
	}
	disp, err := display.NewEPD()
	if err != nil {
		log.Warnf("E-ink display unavailable, logging status instead: %v", err)
		return display.Console{}
	}
	return disp
}
