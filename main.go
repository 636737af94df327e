package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	app   = kingpin.New("musicbox", "Music player that plays a mapped track when an NFC card is held against the reader.")
	debug = app.Flag("debug", "Turn on debug logging.").Bool()

	start        = app.Command("start", "Start the music box and listen for cards.")
	startConfig  = start.Arg("config", "Path to the YAML configuration file.").Required().String()
	pollInterval = start.Flag("poll-interval", "Reader poll interval in milliseconds.").Default("250").Int()
	readerKind   = start.Flag("reader", "Card reader backend to use.").Default("auto").Enum("auto", "pcsc", "none")
	silent       = start.Flag("silent", "Log what would play instead of playing it.").Bool()
	sonosZone    = start.Flag("sonos", "Play through the named Sonos zone instead of the local output.").String()
	sonosBase    = start.Flag("sonos-base", "Base URL under which the music directory is served, needed for Sonos playback.").String()
	debugAddr    = start.Flag("debug-addr", "Listen address for the debug dashboard. Empty disables it.").String()
	withDisplay  = start.Flag("display", "Drive the e-ink status display.").Bool()
	startHistDb  = start.Flag("history-db", "Path to the action history database.").Default("musicbox.db").String()

	add       = app.Command("add", "Map a card to a track in the configuration file.")
	addConfig = add.Arg("config", "Path to the YAML configuration file.").Required().String()
	addTrack  = add.Flag("track", "The track the card should play.").Required().String()
	addCardId = add.Flag("card", "Card id in hex. When omitted, the next card on the reader is used.").String()

	dump       = app.Command("dump", "Print the configured card mappings.")
	dumpConfig = dump.Arg("config", "Path to the YAML configuration file.").Required().String()
	dumpHist   = dump.Flag("history", "Also print the most recent actions.").Bool()
	dumpHistDb = dump.Flag("history-db", "Path to the action history database.").Default("musicbox.db").String()

	trigger       = app.Command("trigger", "Simulate a tap of the given card and play its track.")
	triggerConfig = trigger.Arg("config", "Path to the YAML configuration file.").Required().String()
	triggerCard   = trigger.Arg("card", "Card id in hex.").Required().String()
	triggerSilent = trigger.Flag("silent", "Log what would play instead of playing it.").Bool()

	label     = app.Command("label", "Render a printable label for a card.")
	labelConf = label.Arg("config", "Path to the YAML configuration file.").Required().String()
	labelCard = label.Arg("card", "Card id in hex.").Required().String()
	labelArt  = label.Flag("art", "Image to put on the label.").String()
	labelOut  = label.Flag("out", "Output PNG file.").Default("label.png").String()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	switch command {
	case start.FullCommand():
		startBox()
	case add.FullCommand():
		addCardMapping()
	case dump.FullCommand():
		dumpCards()
	case trigger.FullCommand():
		triggerTap()
	case label.FullCommand():
		createLabel()
	default:
		kingpin.FatalUsage("Unrecognized command")
	}
}
