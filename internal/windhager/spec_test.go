// spec_test.go
package windhager

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"windhager_gateway/internal/logger"
	"windhager_gateway/internal/models"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func writeSpecFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write spec file: %v", err)
	}
	return path
}

func TestLoadSpec_Valid(t *testing.T) {
	path := writeSpecFile(t, `{
		"heating_circuits": [
			{"name": "HK1", "node": 6, "fct": 0,
			 "oids": {"mode": "/1/6/0/0/0/0", "room_temp": "/1/6/0/3/0/0"}}
		],
		"modules": [
			{"name": "LogWIN", "node": 15, "fct": 9,
			 "sensors": [{"oid": "/1/15/9/0/0/0", "name": "Kesseltemperatur", "kind": "temperature"}]}
		],
		"unknown_values": ["-.-", "", "n/a"],
		"eco_default_duration_minutes": 240
	}`)

	spec := LoadSpec(path, testLogger())

	if len(spec.HeatingCircuits) != 1 || spec.HeatingCircuits[0].Name != "HK1" {
		t.Fatalf("heating circuits wrong: %+v", spec.HeatingCircuits)
	}
	if spec.HeatingCircuits[0].OIDs[models.RoleMode] != "/1/6/0/0/0/0" {
		t.Errorf("mode oid = %q", spec.HeatingCircuits[0].OIDs[models.RoleMode])
	}
	if len(spec.Modules) != 1 || len(spec.Modules[0].Sensors) != 1 {
		t.Fatalf("modules wrong: %+v", spec.Modules)
	}
	if spec.EcoDefaultDurationMinutes != 240 {
		t.Errorf("eco default = %d, want 240", spec.EcoDefaultDurationMinutes)
	}
	if !spec.IsUnknownValue("n/a") {
		t.Error("declared unknown value not honored")
	}
}

func TestLoadSpec_MissingFileFallsBackToEmpty(t *testing.T) {
	spec := LoadSpec(filepath.Join(t.TempDir(), "nope.json"), testLogger())

	if len(spec.HeatingCircuits) != 0 || len(spec.Modules) != 0 {
		t.Fatalf("expected empty spec, got %+v", spec)
	}
	if spec.EcoDefaultDurationMinutes != 180 {
		t.Errorf("eco default = %d, want 180", spec.EcoDefaultDurationMinutes)
	}
	if !spec.IsUnknownValue("-.-") || !spec.IsUnknownValue("") {
		t.Error("default sentinels missing")
	}
	if spec.IsUnknownValue("21.5") {
		t.Error("ordinary value classified as sentinel")
	}
}

func TestLoadSpec_InvalidJSONFallsBackToEmpty(t *testing.T) {
	path := writeSpecFile(t, `{"heating_circuits": [`)

	spec := LoadSpec(path, testLogger())
	if len(spec.HeatingCircuits) != 0 || len(spec.Modules) != 0 {
		t.Fatalf("expected empty spec, got %+v", spec)
	}
	if spec.EcoDefaultDurationMinutes != 180 {
		t.Errorf("eco default = %d, want 180", spec.EcoDefaultDurationMinutes)
	}
}

func TestLoadSpec_DefaultsAppliedWhenOmitted(t *testing.T) {
	path := writeSpecFile(t, `{"heating_circuits": [], "modules": []}`)

	spec := LoadSpec(path, testLogger())
	if spec.EcoDefaultDurationMinutes != 180 {
		t.Errorf("eco default = %d, want 180", spec.EcoDefaultDurationMinutes)
	}
	if !spec.IsUnknownValue("-.-") || !spec.IsUnknownValue("") {
		t.Error("default sentinels missing when unknown_values omitted")
	}
}

func TestLoadSpec_DeclaredEmptySentinelListIsKept(t *testing.T) {
	path := writeSpecFile(t, `{"unknown_values": []}`)

	spec := LoadSpec(path, testLogger())
	if spec.IsUnknownValue("-.-") || spec.IsUnknownValue("") {
		t.Error("explicitly empty unknown_values must disable the defaults")
	}
}

func TestLoadSpec_DropsSensorsWithoutOID(t *testing.T) {
	path := writeSpecFile(t, `{
		"modules": [
			{"name": "LogWIN", "node": 15, "fct": 9, "sensors": [
				{"oid": "/1/15/9/0/0/0", "name": "Kesseltemperatur", "kind": "temperature"},
				{"name": "Betriebsphase", "kind": "sensor"},
				{"oid": "", "name": "Abgastemperatur"}
			]}
		]
	}`)

	spec := LoadSpec(path, testLogger())
	sensors := spec.Modules[0].Sensors

	if len(sensors) != 1 {
		t.Fatalf("sensors = %+v, want only the one with an oid", sensors)
	}
	if sensors[0].OID != "/1/15/9/0/0/0" {
		t.Fatalf("kept the wrong sensor: %+v", sensors[0])
	}
}

func TestLoadSpec_SensorKindResolution(t *testing.T) {
	path := writeSpecFile(t, `{
		"modules": [
			{"name": "LogWIN", "node": 15, "fct": 9, "sensors": [
				{"oid": "/1/15/9/0/0/0", "name": "Betriebsphase", "kind": "sensor"},
				{"oid": "/1/15/9/1/0/0", "name": "Abgastemperatur"},
				{"oid": "/1/15/9/2/0/0", "name": "Füllstand"},
				{"oid": "/1/15/9/3/0/0", "name": "Puffertemperatur oben", "kind": "bogus"}
			]}
		]
	}`)

	spec := LoadSpec(path, testLogger())
	sensors := spec.Modules[0].Sensors

	want := []string{
		models.KindSensor,      // declared, wins over the name
		models.KindTemperature, // heuristic: name contains "temperatur"
		models.KindSensor,      // heuristic: no temperature token
		models.KindTemperature, // unknown declared kind falls back to the name
	}
	for i, w := range want {
		if sensors[i].Kind != w {
			t.Errorf("sensor %q kind = %q, want %q", sensors[i].Name, sensors[i].Kind, w)
		}
	}
}

func TestKindFromName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Kesseltemperatur", models.KindTemperature},
		{"Outside Temperature", models.KindTemperature},
		{"TEMPERATUR Puffer", models.KindTemperature},
		{"Betriebsphase", models.KindSensor},
		{"", models.KindSensor},
	}
	for _, c := range cases {
		if got := kindFromName(c.name); got != c.want {
			t.Errorf("kindFromName(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}
