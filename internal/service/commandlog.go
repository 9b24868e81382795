package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"windhager_gateway/internal/models"
	"windhager_gateway/internal/repository"
)

type CommandLogService struct {
	commands repository.CommandRepo
}

func NewCommandLogService(commands repository.CommandRepo) *CommandLogService {
	return &CommandLogService{commands: commands}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the
// time range.
func normalizeAndValidateFilter(f CommandFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	result := strings.TrimSpace(strings.ToUpper(f.Result))
	return from, to, result, nil
}

func (s *CommandLogService) List(ctx context.Context, f CommandFilter) ([]models.CommandEvent, error) {
	from, to, result, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.commands.List(ctx, from, to, result)
}
