package service

import (
	"context"
	"fmt"
	"sort"

	"weathernet"
	"weathernet/internal/repository"
)

// DefaultQueryLimit bounds each device's suffix when the caller gives none.
const DefaultQueryLimit = 20

// QueryService serves the read side: the last-N readings per selected
// device, concatenated and normalized.
type QueryService struct {
	readings     repository.ReadingRepo
	devices      []string
	defaultLimit int
}

// NewQueryService selects the given fixed device list, or all known devices
// when the list is empty.
func NewQueryService(readings repository.ReadingRepo, devices []string, defaultLimit int) *QueryService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultQueryLimit
	}
	return &QueryService{readings: readings, devices: devices, defaultLimit: defaultLimit}
}

// Latest returns up to limit readings per device, oldest-to-newest within
// each device's suffix. limit 0 means the configured default; a negative
// limit is invalid. An empty result is a valid, successful response.
func (s *QueryService) Latest(ctx context.Context, limit int) ([]weathernet.Reading, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", weathernet.ErrInvalidArgument, limit)
	}
	if limit == 0 {
		limit = s.defaultLimit
	}

	devices := s.devices
	if len(devices) == 0 {
		known, err := s.readings.Devices(ctx)
		if err != nil {
			return nil, err
		}
		// The index set is unordered; sort for a stable response.
		devices = append([]string(nil), known...)
		sort.Strings(devices)
	}

	out := make([]weathernet.Reading, 0, len(devices)*limit)
	for _, id := range devices {
		series, err := s.readings.ReadLast(ctx, id, limit)
		if err != nil {
			return nil, err
		}
		for _, r := range series {
			out = append(out, NormalizeReading(r))
		}
	}
	return out, nil
}
