package box

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time copy of the telemetry state.
type Snapshot struct {
	IdleEvents uint64
	LastAction *Action
	LastUpdate time.Time
}

// Status collects what happened last, for the web dashboard and the
// display. It has its own lock so readers never touch the controller.
type Status struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewStatus() *Status {
	return &Status{}
}

func (s *Status) RecordAction(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.LastAction = &action
	s.snap.LastUpdate = time.Now()
}

func (s *Status) RecordIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.IdleEvents++
	s.snap.LastUpdate = time.Now()
}

func (s *Status) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	if snap.LastAction != nil {
		action := *snap.LastAction
		snap.LastAction = &action
	}
	return snap
}
