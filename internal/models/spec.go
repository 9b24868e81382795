package models

// Role names used inside a heating circuit's OID map.
const (
	RoleMode          = "mode"
	RoleComfortOffset = "comfort_offset"
	RoleEcoTemp       = "eco_temp"
	RoleEcoDuration   = "eco_duration"
	RoleRoomTemp      = "room_temp"
	RoleRoomTargetRO  = "room_target_ro"
	RoleFlowTemp      = "flow_temp"
	RoleFlowTarget    = "flow_target"
	RoleDHWTemp       = "dhw_temp"
	RoleDHWTargetRO   = "dhw_target_ro"
	RoleOutsideTemp   = "outside_temp"
	RolePump          = "pump"
	RoleMixer         = "mixer"
)

// Sensor kinds a module sensor can declare.
const (
	KindTemperature = "temperature"
	KindSensor      = "sensor"
)

// HeatingCircuit describes one heating circuit and the OIDs backing it.
type HeatingCircuit struct {
	Name string            `json:"name"`
	Node int               `json:"node"`
	Fct  int               `json:"fct"`
	OIDs map[string]string `json:"oids"` // role → OID; not all roles need be present
}

// ModuleSensor is one read-only point declared by an auxiliary module.
// Kind is optional; when empty the loader falls back to a name heuristic.
type ModuleSensor struct {
	OID  string `json:"oid"`
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

// Module describes an auxiliary module (AeroWIN, LogWIN, hybrid tank, ...)
// which exposes sensors but has no climate semantics.
type Module struct {
	Name    string         `json:"name"`
	Node    int            `json:"node"`
	Fct     int            `json:"fct"`
	Sensors []ModuleSensor `json:"sensors"`
}

// Specification is the declarative device description loaded once at client
// construction. It is read-only for the lifetime of the client.
type Specification struct {
	HeatingCircuits           []HeatingCircuit `json:"heating_circuits"`
	Modules                   []Module         `json:"modules"`
	UnknownValues             []string         `json:"unknown_values"`
	EcoDefaultDurationMinutes int              `json:"eco_default_duration_minutes"`
}

// IsUnknownValue reports whether a raw value is one of the device's
// "no data" sentinels.
func (s Specification) IsUnknownValue(raw string) bool {
	for _, v := range s.UnknownValues {
		if raw == v {
			return true
		}
	}
	return false
}
