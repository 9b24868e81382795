package models

import "time"

// Device types exposed upstream.
const (
	DeviceClimate     = "climate"
	DeviceTemperature = "temperature"
	DeviceSensor      = "sensor"
)

// Device is one logical entity derived from the specification. A climate
// device owns an OIDs map (role → OID) and groups child sensors through
// DeviceID; temperature/sensor devices reference a single OID.
type Device struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Type       string            `json:"type"` // climate | temperature | sensor
	Prefix     string            `json:"prefix,omitempty"`
	OID        string            `json:"oid,omitempty"`
	OIDs       map[string]string `json:"oids_map,omitempty"` // climate only; all six roles keyed, empty value = absent
	DeviceID   string            `json:"device_id"`
	DeviceName string            `json:"device_name"`
}

// Meta carries per-snapshot runtime defaults.
type Meta struct {
	EcoDefaultDurationMinutes int `json:"eco_default_duration_minutes"`
}

// Snapshot is the complete result of one fetch cycle. Every OID referenced
// by a device appears as a key in OIDs; a nil value means the point was
// unreachable or reported a "no data" sentinel.
type Snapshot struct {
	Devices   []Device           `json:"devices"`
	OIDs      map[string]*string `json:"oids"`
	Units     map[string]string  `json:"units"`
	Meta      Meta               `json:"meta"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Value returns the cached raw value for an OID, or false when the OID is
// absent (unknown key or degraded point).
func (s *Snapshot) Value(oid string) (string, bool) {
	v, ok := s.OIDs[oid]
	if !ok || v == nil {
		return "", false
	}
	return *v, true
}
