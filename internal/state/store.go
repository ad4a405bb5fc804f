// Package state holds the dashboard's materialized view of the reading feed.
package state

import (
	"sync"
	"time"

	"weathernet"
	"weathernet/internal/stats"
)

// Store is a disposable, rebuildable cache of the reading store: readings,
// derived stats and fetch status flags. All mutation goes through the
// transition methods; Snapshot returns a copy safe to hand out.
type Store struct {
	mu          sync.RWMutex
	readings    []weathernet.Reading
	stats       weathernet.Stats
	loading     bool
	err         string
	lastUpdated time.Time
}

func NewStore() *Store {
	return &Store{}
}

// Replace swaps the full reading set, recomputes stats, stamps lastUpdated
// and clears any previous error.
func (s *Store) Replace(readings []weathernet.Reading) {
	batch := cloneReadings(readings)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = batch
	s.applyUpdate()
}

// Append concatenates the batch onto the existing readings. Used in
// simulation mode, where the feed is incremental rather than a full snapshot.
func (s *Store) Append(readings []weathernet.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, readings...)
	s.applyUpdate()
}

// applyUpdate recomputes derived state after a readings change. Callers hold mu.
func (s *Store) applyUpdate() {
	s.stats = stats.Compute(s.readings)
	s.lastUpdated = time.Now().UTC()
	s.err = ""
}

func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// SetError records a fetch failure. Loading is forced off: an errored cycle
// is over. Existing readings are deliberately kept so the last good snapshot
// stays visible alongside the error.
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = msg
	s.loading = false
}

func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = ""
}

// Snapshot returns a copy of the current view.
func (s *Store) Snapshot() weathernet.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := weathernet.Snapshot{
		Readings: cloneReadings(s.readings),
		Stats:    s.stats,
		Loading:  s.loading,
		Error:    s.err,
	}
	if !s.lastUpdated.IsZero() {
		t := s.lastUpdated
		snap.LastUpdated = &t
	}
	return snap
}

func cloneReadings(readings []weathernet.Reading) []weathernet.Reading {
	out := make([]weathernet.Reading, len(readings))
	copy(out, readings)
	return out
}
