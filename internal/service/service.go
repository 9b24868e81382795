package service

import (
	"context"
	"time"

	"windhager_gateway/internal/logger"
	"windhager_gateway/internal/models"
	"windhager_gateway/internal/repository"
	"windhager_gateway/internal/windhager"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Climate exposes climate-entity state derived from the latest snapshot and
// the write commands against a climate device.
type Climate interface {
	States(ctx context.Context) ([]ClimateState, error)
	SetMode(ctx context.Context, deviceID, mode string) error
	SetTemperature(ctx context.Context, deviceID string, temp float64, durationMinutes int) error
	SetComfortOffset(ctx context.Context, deviceID string, offset float64) error
}

// Monitoring exposes read-only gateway state: the latest snapshot, the
// device list and the runtime eco default.
type Monitoring interface {
	Snapshot() (*models.Snapshot, bool)
	Devices() ([]models.Device, bool)
	EcoDefaultDuration() int
	SetEcoDefaultDuration(minutes int) error
}

// Poller runs the background refresh loop. Stop via context cancellation.
type Poller interface {
	Run(ctx context.Context, tick time.Duration)
}

// CommandLog exposes the write-command audit trail with filtering.
type CommandLog interface {
	List(ctx context.Context, f CommandFilter) ([]models.CommandEvent, error)
}

// CommandFilter narrows the audit listing.
type CommandFilter struct {
	From   time.Time // inclusive; zero means no lower bound
	To     time.Time // inclusive; zero means no upper bound
	Result string    // "", "OK", "FAILED"
}

// Service aggregates all sub-services.
type Service struct {
	Climate
	Monitoring
	Poller
	CommandLog
	Authorization
}

// NewService wires the device client and repository layer into concrete
// services sharing one snapshot store.
func NewService(client *windhager.Client, repos *repository.Repository, signingKey string, log *logger.Logger) *Service {
	store := NewSnapshotStore()
	return &Service{
		Climate:       NewClimateService(store, client, client.EcoDuration(), repos.Commands, log.Named("climate")),
		Monitoring:    NewMonitoringService(store, client.EcoDuration()),
		Poller:        NewPollerService(client, store, log.Named("poller")),
		CommandLog:    NewCommandLogService(repos.Commands),
		Authorization: NewAuthService(repos.Auth, signingKey),
	}
}
