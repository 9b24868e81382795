package windhager

import (
	"errors"
	"strconv"
	"sync"

	"windhager_gateway/internal/logger"
)

// ErrInvalidDuration rejects eco/comfort duration updates that are not a
// positive number of minutes.
var ErrInvalidDuration = errors.New("eco duration must be a positive number of minutes")

// EcoDuration is the runtime-mutable default duration (minutes) applied to
// eco/comfort override writes when the caller does not specify one. A single
// cell is owned by the client and its handle is shared with the command
// layer; access is mutex-guarded.
type EcoDuration struct {
	mu      sync.Mutex
	minutes int
	log     *logger.Logger
}

func NewEcoDuration(minutes int, log *logger.Logger) *EcoDuration {
	if minutes <= 0 {
		minutes = defaultEcoDurationMinutes
	}
	return &EcoDuration{minutes: minutes, log: log}
}

// Get returns the current default duration in minutes.
func (e *EcoDuration) Get() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.minutes
}

// Set validates and applies a new default. Invalid input is rejected and
// logged; the prior value is kept.
func (e *EcoDuration) Set(minutes int) error {
	if minutes <= 0 {
		e.log.Errorw("rejected eco default duration", "minutes", minutes)
		return ErrInvalidDuration
	}
	e.mu.Lock()
	e.minutes = minutes
	e.mu.Unlock()
	e.log.Infow("eco default duration updated", "minutes", minutes)
	return nil
}

// SetString coerces raw operator input before applying it.
func (e *EcoDuration) SetString(raw string) error {
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		e.log.Errorw("rejected eco default duration", "raw", raw, "err", err)
		return ErrInvalidDuration
	}
	return e.Set(minutes)
}
