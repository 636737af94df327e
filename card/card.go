package card

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
)

// ID is the unique byte sequence read from a physical card. The canonical
// textual form is lowercase hex, two characters per byte.
type ID []byte

// ParseID decodes a hex string into an ID. Odd-length input fails with
// hex.ErrLength, and any non-hex character fails with a
// hex.InvalidByteError naming the character.
func ParseID(s string) (ID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid card id %q: %w", s, err)
	}
	return ID(b), nil
}

func (id ID) String() string {
	return hex.EncodeToString(id)
}

func (id ID) Equal(other ID) bool {
	return bytes.Equal(id, other)
}

// Track is a playable track. The path is opaque to the controller; it is
// resolved against the music directory when the configuration is loaded.
type Track struct {
	Path string
}

// Entry is one card to track mapping in a Library.
type Entry struct {
	Card  ID
	Track Track
}

// Library is a read-only mapping from card IDs to tracks. It is built once
// from configuration and only ever replaced as a whole.
type Library struct {
	tracks map[string]Entry
}

func NewLibrary(entries []Entry) Library {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Card.String()] = e
	}
	return Library{tracks: m}
}

func (l Library) Lookup(id ID) (Track, bool) {
	e, ok := l.tracks[id.String()]
	return e.Track, ok
}

func (l Library) Len() int {
	return len(l.tracks)
}

// Entries returns all mappings sorted by card ID.
func (l Library) Entries() []Entry {
	entries := make([]Entry, 0, len(l.tracks))
	for _, e := range l.tracks {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].Card, entries[j].Card) < 0
	})
	return entries
}
