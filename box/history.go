package box

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/buntdb"
)

// History is a persisted log of controller actions, so "what played when"
// survives restarts. Use ":memory:" for a throwaway log.
type History struct {
	db *buntdb.DB
}

type HistoryEntry struct {
	Time   time.Time `json:"time"`
	Action string    `json:"action"`
	Card   string    `json:"card"`
	Track  string    `json:"track"`
}

func OpenHistory(path string) (*History, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history %v: %w", path, err)
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) Append(action Action) error {
	entry := HistoryEntry{
		Time:   time.Now(),
		Action: action.Kind.String(),
		Card:   action.Card.String(),
		Track:  action.Track.Path,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return h.db.Update(func(tx *buntdb.Tx) error {
		key := fmt.Sprintf("history:%020d", entry.Time.UnixNano())
		_, _, err := tx.Set(key, string(data), nil)
		return err
	})
}

// Recent returns up to n entries, newest first.
func (h *History) Recent(n int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := h.db.View(func(tx *buntdb.Tx) error {
		var inner error
		tx.Descend("", func(key, value string) bool {
			if len(entries) >= n {
				return false
			}
			var entry HistoryEntry
			if err := json.Unmarshal([]byte(value), &entry); err != nil {
				inner = err
				return false
			}
			entries = append(entries, entry)
			return true
		})
		return inner
	})
	return entries, err
}
