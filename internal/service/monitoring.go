package service

import (
	"windhager_gateway/internal/models"
	"windhager_gateway/internal/windhager"
)

// MonitoringService reads the latest snapshot and the runtime eco default.
type MonitoringService struct {
	store *SnapshotStore
	eco   *windhager.EcoDuration
}

func NewMonitoringService(store *SnapshotStore, eco *windhager.EcoDuration) *MonitoringService {
	return &MonitoringService{store: store, eco: eco}
}

// Snapshot returns the latest snapshot, or false before the first cycle.
func (s *MonitoringService) Snapshot() (*models.Snapshot, bool) {
	return s.store.Get()
}

// Devices returns the device list of the latest snapshot.
func (s *MonitoringService) Devices() ([]models.Device, bool) {
	snap, ok := s.store.Get()
	if !ok {
		return nil, false
	}
	return snap.Devices, true
}

// EcoDefaultDuration returns the current eco/comfort default in minutes.
func (s *MonitoringService) EcoDefaultDuration() int {
	return s.eco.Get()
}

// SetEcoDefaultDuration validates and applies a new default; invalid input
// keeps the prior value.
func (s *MonitoringService) SetEcoDefaultDuration(minutes int) error {
	return s.eco.Set(minutes)
}
