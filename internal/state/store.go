package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot is the latest listing available to readers.
type Snapshot[T any] struct {
	Items               []T
	HasData             bool // at least one refresh has succeeded
	LastUpdated         time.Time
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int // refresh failures since the last success
}

// IsOffline returns true when the store has been unreachable for multiple refreshes.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// IsStale reports whether the most recent refresh failed, so Items may lag
// behind the backing store.
func (s Snapshot[T]) IsStale() bool {
	return s.LastError != nil
}

// Store coordinates concurrent updates to the snapshot. The zero value is
// ready to use.
type Store[T any] struct {
	mu       sync.RWMutex
	snapshot Snapshot[T]
}

// Update replaces the stored items. When err is non-nil the previous items are
// kept but the error is recorded for visibility.
func (s *Store[T]) Update(items []T, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = now
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Items = cloneItems(items)
	s.snapshot.HasData = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = now
	s.snapshot.LastSuccess = now
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = cloneItems(s.snapshot.Items)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Items returns a copy of the current items only.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.snapshot.Items)
}

func cloneItems[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	copy(dup, items)
	return dup
}
