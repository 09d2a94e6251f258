package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is the latest view of backend health.
type Snapshot struct {
	Backend             string
	Reachable           bool
	Checked             bool
	LastChecked         time.Time
	LastSuccess         time.Time
	Latency             time.Duration
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the backend has been unreachable for multiple
// probes in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// SetBackend records which backend is being probed.
func (s *Store) SetBackend(base string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Backend = base
}

// Record stores the outcome of one health probe. A failure keeps the time of
// the last success so the UI can say how long the backend has been gone.
func (s *Store) Record(latency time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.snapshot.Checked = true
	s.snapshot.LastChecked = now
	if err != nil {
		s.snapshot.Reachable = false
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}
	s.snapshot.Reachable = true
	s.snapshot.LastSuccess = now
	s.snapshot.Latency = latency
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
