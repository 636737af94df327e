package display

import (
	"testing"
	"time"

	"github.com/callebjorkell/musicbox/box"
	"github.com/callebjorkell/musicbox/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLinesWhileWaiting(t *testing.T) {
	lines := StatusLines(box.Snapshot{IdleEvents: 7})

	assert.Equal(t, []string{
		"Musicbox",
		"State: Waiting",
		"Idle polls: 7",
		"Card: -",
		"Track: -",
		"Updated: -",
	}, lines)
}

func TestStatusLinesWhilePlaying(t *testing.T) {
	id, err := card.ParseID("cafe")
	require.NoError(t, err)

	lines := StatusLines(box.Snapshot{
		IdleEvents: 3,
		LastAction: &box.Action{
			Kind:  box.Started,
			Card:  id,
			Track: card.Track{Path: "/music/albums/song1.mp3"},
		},
		LastUpdate: time.Now(),
	})

	assert.Equal(t, "State: Playing", lines[1])
	assert.Equal(t, "Card: cafe", lines[3])
	assert.Equal(t, "Track: song1.mp3", lines[4])
	assert.Equal(t, "Updated: just now", lines[5])
}

func TestStatusLinesAfterStop(t *testing.T) {
	id, err := card.ParseID("cafe")
	require.NoError(t, err)

	lines := StatusLines(box.Snapshot{
		LastAction: &box.Action{Kind: box.Stopped, Card: id},
		LastUpdate: time.Now().Add(-5 * time.Second),
	})

	assert.Equal(t, "State: Stopped", lines[1])
	assert.Equal(t, "Card: -", lines[3])
	assert.Equal(t, "Updated: 5s ago", lines[5])
}

func TestStatusLinesAfterSwitch(t *testing.T) {
	from, err := card.ParseID("0102")
	require.NoError(t, err)
	to, err := card.ParseID("0304")
	require.NoError(t, err)

	lines := StatusLines(box.Snapshot{
		LastAction: &box.Action{
			Kind:      box.Switched,
			Card:      to,
			Track:     card.Track{Path: "song2.mp3"},
			FromCard:  from,
			FromTrack: card.Track{Path: "song1.mp3"},
		},
	})

	assert.Equal(t, "State: Switched", lines[1])
	assert.Equal(t, "Card: 0304", lines[3])
	assert.Equal(t, "Track: song2.mp3", lines[4])
}
