package windhager

import (
	"encoding/json"
	"os"
	"strings"

	"windhager_gateway/internal/logger"
	"windhager_gateway/internal/models"
)

// Documented defaults applied when spec.json omits the fields or cannot be
// loaded at all.
const (
	defaultEcoDurationMinutes = 180
)

func defaultUnknownValues() []string {
	return []string{"-.-", ""}
}

// LoadSpec reads the declarative device specification from path. It never
// fails outward: on any IO or parse error it logs and returns an empty
// specification merged with the defaults, so the rest of the gateway stays
// alive with no circuits and no modules.
func LoadSpec(path string, log *logger.Logger) models.Specification {
	spec, err := readSpec(path)
	if err != nil {
		log.Errorw("failed to load spec, falling back to empty specification",
			"path", path, "err", err)
		spec = models.Specification{
			HeatingCircuits: []models.HeatingCircuit{},
			Modules:         []models.Module{},
		}
	}
	applySpecDefaults(&spec)
	pruneSensorsWithoutOID(&spec, log)
	resolveSensorKinds(&spec, log)
	return spec
}

// pruneSensorsWithoutOID drops module sensors that declare no OID. Such a
// record has nothing to poll, and an empty OID would otherwise turn into a
// bogus lookup path.
func pruneSensorsWithoutOID(spec *models.Specification, log *logger.Logger) {
	for mi := range spec.Modules {
		mod := &spec.Modules[mi]
		kept := mod.Sensors[:0]
		for _, s := range mod.Sensors {
			if s.OID == "" {
				log.Warnw("module sensor has no oid, skipping",
					"module", mod.Name, "sensor", s.Name)
				continue
			}
			kept = append(kept, s)
		}
		mod.Sensors = kept
	}
}

func readSpec(path string) (models.Specification, error) {
	var spec models.Specification
	raw, err := os.ReadFile(path)
	if err != nil {
		return spec, err
	}
	if err := json.Unmarshal(raw, &spec); err != nil {
		return spec, err
	}
	return spec, nil
}

// applySpecDefaults fills the documented defaults for fields the document
// may omit. A nil UnknownValues slice means "not declared"; an explicitly
// empty list is kept as declared.
func applySpecDefaults(spec *models.Specification) {
	if spec.UnknownValues == nil {
		spec.UnknownValues = defaultUnknownValues()
	}
	if spec.EcoDefaultDurationMinutes <= 0 {
		spec.EcoDefaultDurationMinutes = defaultEcoDurationMinutes
	}
}

// resolveSensorKinds normalizes every module sensor to an explicit kind.
// A declared "temperature"/"sensor" kind wins; anything else falls back to
// the legacy name heuristic (the localized token "temperatur" appearing in
// the sensor name) and the fallback is logged so ambiguous records are
// visible instead of silently guessed.
func resolveSensorKinds(spec *models.Specification, log *logger.Logger) {
	for mi := range spec.Modules {
		mod := &spec.Modules[mi]
		for si := range mod.Sensors {
			s := &mod.Sensors[si]
			switch s.Kind {
			case models.KindTemperature, models.KindSensor:
				continue
			case "":
				s.Kind = kindFromName(s.Name)
				log.Debugw("sensor kind resolved by name heuristic",
					"module", mod.Name, "sensor", s.Name, "kind", s.Kind)
			default:
				declared := s.Kind
				s.Kind = kindFromName(s.Name)
				log.Warnw("unknown sensor kind declared, using name heuristic",
					"module", mod.Name, "sensor", s.Name,
					"declared", declared, "kind", s.Kind)
			}
		}
	}
}

// kindFromName classifies a sensor by its declared name. The substring is
// the German stem so it matches both "Temperatur" and "temperature".
func kindFromName(name string) string {
	if strings.Contains(strings.ToLower(name), "temperatur") {
		return models.KindTemperature
	}
	return models.KindSensor
}
