package windhager

import (
	"fmt"
	"strings"

	"windhager_gateway/internal/models"
)

// climateRoles is the fixed role set a climate device exposes through its
// OIDs map. The presentation layer depends on all six keys being present,
// with an empty value when the circuit does not declare the role.
var climateRoles = []string{
	models.RoleMode,
	models.RoleComfortOffset,
	models.RoleEcoTemp,
	models.RoleEcoDuration,
	models.RoleRoomTemp,
	models.RoleRoomTargetRO,
}

type roleLabel struct {
	role  string
	label string
}

// temperatureRoles are emitted as temperature child sensors, in this order,
// when the circuit declares the role.
var temperatureRoles = []roleLabel{
	{models.RoleRoomTemp, "Room Temperature"},
	{models.RoleRoomTargetRO, "Target Temperature (read-only)"},
	{models.RoleFlowTemp, "Flow Temperature"},
	{models.RoleFlowTarget, "Flow Target"},
	{models.RoleDHWTemp, "DHW Temperature"},
	{models.RoleDHWTargetRO, "DHW Target (read-only)"},
	{models.RoleOutsideTemp, "Outside Temperature"},
}

// statusRoles are emitted as generic child sensors.
var statusRoles = []roleLabel{
	{models.RolePump, "Pump"},
	{models.RoleMixer, "Mixer"},
}

// Slugify turns a host+OID string into a stable entity identifier by
// replacing '.' and '/' with '-'. It is deterministic and injective over
// the device's OID grammar; it is not a general collision-free hash.
func Slugify(s string) string {
	return strings.NewReplacer(".", "-", "/", "-").Replace(s)
}

// BuildDevices transforms the specification into the flat device list and
// the deduplicated set of OIDs a fetch cycle must look up. It is a pure
// function of its inputs; the caller rebuilds both on every cycle.
func BuildDevices(host string, spec models.Specification) ([]models.Device, map[string]struct{}) {
	devices := make([]models.Device, 0, len(spec.HeatingCircuits)*8)
	oids := make(map[string]struct{})

	for _, hk := range spec.HeatingCircuits {
		devices = appendCircuitDevices(devices, oids, host, hk)
	}
	for _, mod := range spec.Modules {
		devices = appendModuleSensors(devices, oids, host, mod)
	}
	return devices, oids
}

// appendCircuitDevices emits the climate parent plus its child sensors for
// one heating circuit.
func appendCircuitDevices(devices []models.Device, oids map[string]struct{}, host string, hk models.HeatingCircuit) []models.Device {
	prefix := fmt.Sprintf("/1/%d/%d", hk.Node, hk.Fct)
	devID := Slugify(host + prefix)

	oidsMap := make(map[string]string, len(climateRoles))
	for _, role := range climateRoles {
		oid := hk.OIDs[role]
		oidsMap[role] = oid
		if oid != "" {
			oids[oid] = struct{}{}
		}
	}

	devices = append(devices, models.Device{
		ID:         devID,
		Name:       hk.Name,
		Type:       models.DeviceClimate,
		Prefix:     prefix,
		OIDs:       oidsMap,
		DeviceID:   devID,
		DeviceName: hk.Name,
	})

	for _, rl := range temperatureRoles {
		devices = appendChildSensor(devices, oids, host, hk, devID, rl, models.DeviceTemperature)
	}
	for _, rl := range statusRoles {
		devices = appendChildSensor(devices, oids, host, hk, devID, rl, models.DeviceSensor)
	}
	return devices
}

// appendChildSensor emits one child device when the circuit declares the
// role's OID; circuits without the role emit nothing.
func appendChildSensor(devices []models.Device, oids map[string]struct{}, host string, hk models.HeatingCircuit, devID string, rl roleLabel, typ string) []models.Device {
	oid := hk.OIDs[rl.role]
	if oid == "" {
		return devices
	}
	oids[oid] = struct{}{}
	return append(devices, models.Device{
		ID:         Slugify(host + oid),
		Name:       hk.Name + " " + rl.label,
		Type:       typ,
		OID:        oid,
		DeviceID:   devID,
		DeviceName: hk.Name,
	})
}

// appendModuleSensors emits one child device per declared module sensor.
// Modules have no climate parent entry; the children share the module's
// device identity.
func appendModuleSensors(devices []models.Device, oids map[string]struct{}, host string, mod models.Module) []models.Device {
	prefix := fmt.Sprintf("/1/%d/%d", mod.Node, mod.Fct)
	devID := Slugify(host + prefix)

	for _, s := range mod.Sensors {
		if s.OID == "" {
			continue
		}
		typ := s.Kind
		if typ != models.DeviceTemperature {
			typ = models.DeviceSensor
		}
		oids[s.OID] = struct{}{}
		devices = append(devices, models.Device{
			ID:         Slugify(host + s.OID),
			Name:       mod.Name + " " + s.Name,
			Type:       typ,
			OID:        s.OID,
			DeviceID:   devID,
			DeviceName: mod.Name,
		})
	}
	return devices
}
