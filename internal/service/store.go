package service

import (
	"sync"

	"windhager_gateway/internal/models"
)

// SnapshotStore holds the latest published snapshot. The poller is the only
// writer; handlers and the websocket loop read concurrently.
type SnapshotStore struct {
	mu   sync.RWMutex
	snap *models.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Set publishes a new snapshot.
func (s *SnapshotStore) Set(snap *models.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Get returns the latest snapshot, or false before the first fetch cycle
// has completed.
func (s *SnapshotStore) Get() (*models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, false
	}
	return s.snap, true
}
