package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"windhager_gateway/internal/logger"
	"windhager_gateway/internal/metrics"
	"windhager_gateway/internal/models"
	"windhager_gateway/internal/repository"
	"windhager_gateway/internal/windhager"
)

// Climate modes exposed upstream.
const (
	ModeAuto = "auto"
	ModeHeat = "heat"
	ModeOff  = "off"
)

// Raw Betriebsart codes on the device.
const (
	rawModeAuto = "0"
	rawModeHeat = "1"
	rawModeOff  = "2"
)

// Comfort offset bounds accepted by the controller.
const (
	minComfortOffset = -3.5
	maxComfortOffset = 3.5
)

var (
	ErrNoSnapshot    = errors.New("no snapshot available yet")
	ErrUnknownDevice = errors.New("unknown climate device")
	ErrRoleNotMapped = errors.New("role not mapped for device")
	ErrInvalidMode   = errors.New("invalid mode: must be auto, heat, or off")
	ErrOffsetRange   = errors.New("comfort offset must be between -3.5 and 3.5")
)

// DeviceWriter issues single-point writes against the device.
type DeviceWriter interface {
	Update(ctx context.Context, oid, value string) error
}

// ClimateState is the climate-entity view of one heating circuit derived
// from the latest snapshot. Absent points surface as nil, never as errors.
type ClimateState struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Available              bool     `json:"available"`
	Mode                   string   `json:"mode"`
	CurrentTemp            *float64 `json:"current_temp"`
	CurrentTempCompensated *float64 `json:"current_temp_compensated"`
	TargetTemp             *float64 `json:"target_temp"`
	ComfortOffset          *float64 `json:"comfort_offset"`
	EcoTemp                *float64 `json:"eco_temp"`
}

// ClimateService maps cached snapshot state into climate semantics and
// issues authenticated writes back through the device client.
type ClimateService struct {
	store    *SnapshotStore
	writer   DeviceWriter
	eco      *windhager.EcoDuration
	commands repository.CommandRepo
	log      *logger.Logger
}

func NewClimateService(store *SnapshotStore, writer DeviceWriter, eco *windhager.EcoDuration, commands repository.CommandRepo, log *logger.Logger) *ClimateService {
	return &ClimateService{
		store:    store,
		writer:   writer,
		eco:      eco,
		commands: commands,
		log:      log,
	}
}

// mapModeFromRaw maps a raw Betriebsart value to a climate mode. Unmapped
// codes default to heat, matching the controller's manual modes.
func mapModeFromRaw(raw string) string {
	switch raw {
	case rawModeAuto:
		return ModeAuto
	case rawModeOff:
		return ModeOff
	default:
		return ModeHeat
	}
}

// mapModeToRaw maps a climate mode to its raw Betriebsart code.
func mapModeToRaw(mode string) (string, error) {
	switch mode {
	case ModeAuto:
		return rawModeAuto, nil
	case ModeHeat:
		return rawModeHeat, nil
	case ModeOff:
		return rawModeOff, nil
	default:
		return "", ErrInvalidMode
	}
}

// States derives one ClimateState per climate device in the latest
// snapshot.
func (s *ClimateService) States(ctx context.Context) ([]ClimateState, error) {
	snap, ok := s.store.Get()
	if !ok {
		return nil, ErrNoSnapshot
	}

	states := make([]ClimateState, 0, 2)
	for _, dev := range snap.Devices {
		if dev.Type != models.DeviceClimate {
			continue
		}
		states = append(states, buildClimateState(snap, dev))
	}
	return states, nil
}

func buildClimateState(snap *models.Snapshot, dev models.Device) ClimateState {
	st := ClimateState{
		ID:   dev.ID,
		Name: dev.Name,
		Mode: ModeHeat,
	}
	if raw, ok := snap.Value(dev.OIDs[models.RoleMode]); ok {
		st.Mode = mapModeFromRaw(raw)
	}
	st.CurrentTemp = floatValue(snap, dev.OIDs[models.RoleRoomTemp])
	st.TargetTemp = floatValue(snap, dev.OIDs[models.RoleRoomTargetRO])
	st.ComfortOffset = floatValue(snap, dev.OIDs[models.RoleComfortOffset])
	st.EcoTemp = floatValue(snap, dev.OIDs[models.RoleEcoTemp])

	// A circuit is available when its defining room temperature is present.
	st.Available = st.CurrentTemp != nil

	// The controller applies the comfort offset to the reported room
	// temperature; the compensated reading removes it again.
	if st.CurrentTemp != nil {
		comp := *st.CurrentTemp
		if st.ComfortOffset != nil {
			comp -= *st.ComfortOffset
		}
		st.CurrentTempCompensated = &comp
	}
	return st
}

func floatValue(snap *models.Snapshot, oid string) *float64 {
	raw, ok := snap.Value(oid)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// SetMode writes the raw mode code to the circuit's mode point.
func (s *ClimateService) SetMode(ctx context.Context, deviceID, mode string) error {
	raw, err := mapModeToRaw(mode)
	if err != nil {
		return err
	}
	oid, err := s.roleOID(deviceID, models.RoleMode)
	if err != nil {
		return err
	}
	return s.write(ctx, oid, raw)
}

// SetTemperature writes an eco/comfort temperature override. A duration of
// zero or less defaults from the shared eco duration cell.
func (s *ClimateService) SetTemperature(ctx context.Context, deviceID string, temp float64, durationMinutes int) error {
	tempOID, err := s.roleOID(deviceID, models.RoleEcoTemp)
	if err != nil {
		return err
	}
	durationOID, err := s.roleOID(deviceID, models.RoleEcoDuration)
	if err != nil {
		return err
	}
	if durationMinutes <= 0 {
		durationMinutes = s.eco.Get()
	}

	if err := s.write(ctx, tempOID, strconv.FormatFloat(temp, 'f', 1, 64)); err != nil {
		return err
	}
	return s.write(ctx, durationOID, strconv.Itoa(durationMinutes))
}

// SetComfortOffset writes the room-temperature compensation bias.
func (s *ClimateService) SetComfortOffset(ctx context.Context, deviceID string, offset float64) error {
	if offset < minComfortOffset || offset > maxComfortOffset {
		return ErrOffsetRange
	}
	oid, err := s.roleOID(deviceID, models.RoleComfortOffset)
	if err != nil {
		return err
	}
	return s.write(ctx, oid, strconv.FormatFloat(offset, 'f', 1, 64))
}

// roleOID resolves a climate device's OID for a role from the latest
// snapshot.
func (s *ClimateService) roleOID(deviceID, role string) (string, error) {
	snap, ok := s.store.Get()
	if !ok {
		return "", ErrNoSnapshot
	}
	for _, dev := range snap.Devices {
		if dev.Type != models.DeviceClimate || dev.ID != deviceID {
			continue
		}
		oid := dev.OIDs[role]
		if oid == "" {
			return "", fmt.Errorf("%w: device %s has no %s point", ErrRoleNotMapped, deviceID, role)
		}
		return oid, nil
	}
	return "", ErrUnknownDevice
}

// write issues the device write and records it in the audit log. Write
// failures propagate to the caller; audit failures are only logged.
func (s *ClimateService) write(ctx context.Context, oid, value string) error {
	writeErr := s.writer.Update(ctx, oid, value)

	ev := models.CommandEvent{
		IssuedAt: time.Now().UTC(),
		OID:      oid,
		Value:    value,
		Result:   models.CommandOK,
	}
	if writeErr != nil {
		ev.Result = models.CommandFailed
		ev.Error = writeErr.Error()
	}
	metrics.WriteCommands.WithLabelValues(ev.Result).Inc()
	if err := s.commands.Append(ctx, ev); err != nil {
		s.log.Errorw("failed to record command event", "oid", oid, "err", err)
	}

	return writeErr
}
