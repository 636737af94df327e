package audio

import (
	"github.com/callebjorkell/musicbox/card"
	log "github.com/sirupsen/logrus"
)

// Silent is a playback backend that only logs. Used for --silent runs and
// when no sound device is available.
type Silent struct{}

func (Silent) Play(track card.Track) error {
	log.Infof("[silent] would play %v", track.Path)
	return nil
}

func (Silent) Stop() error {
	log.Info("[silent] would stop playback")
	return nil
}

func (Silent) WaitUntilDone() error {
	return nil
}
