package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/callebjorkell/musicbox/card"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// Beep plays tracks on the local sound device through the beep mixer. The
// speaker is initialized once at a fixed rate and all tracks are resampled
// onto it.
type Beep struct {
	sampleRate beep.SampleRate

	mu     sync.Mutex
	stream beep.StreamSeekCloser
	done   chan struct{}
}

func NewBeep() (*Beep, error) {
	const rate = beep.SampleRate(44100)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("initialize speaker: %w", err)
	}
	return &Beep{sampleRate: rate}, nil
}

func (b *Beep) Play(track card.Track) error {
	stream, format, err := decode(track.Path)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	speaker.Clear()
	b.closeCurrent()

	done := make(chan struct{})
	b.stream = stream
	b.done = done

	var source beep.Streamer = stream
	if format.SampleRate != b.sampleRate {
		source = beep.Resample(4, format.SampleRate, b.sampleRate, stream)
	}
	speaker.Play(beep.Seq(source, beep.Callback(func() {
		close(done)
	})))
	return nil
}

func (b *Beep) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	speaker.Clear()
	b.closeCurrent()
	return nil
}

func (b *Beep) WaitUntilDone() error {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()

	if done != nil {
		<-done
	}
	return nil
}

// closeCurrent must be called with the mutex held.
func (b *Beep) closeCurrent() {
	if b.stream != nil {
		b.stream.Close()
		b.stream = nil
	}
	b.done = nil
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open track %v: %w", path, err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	case ".ogg", ".oga":
		stream, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported track format %v", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode track %v: %w", path, err)
	}
	return stream, format, nil
}
