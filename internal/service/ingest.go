package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weathernet"
	"weathernet/internal/repository"
)

// IngestService validates reading submissions and appends them to the store.
type IngestService struct {
	readings repository.ReadingRepo
	archive  repository.ArchiveRepo
}

func NewIngestService(readings repository.ReadingRepo, archive repository.ArchiveRepo) *IngestService {
	return &IngestService{readings: readings, archive: archive}
}

// Store validates the reading, fills a missing timestamp with the append
// time, and persists it. The stored reading is returned so the endpoint can
// echo exactly what was accepted. A store failure surfaces synchronously;
// ingestion is never silently dropped.
func (s *IngestService) Store(ctx context.Context, r weathernet.Reading) (weathernet.Reading, error) {
	deviceID := strings.TrimSpace(r.DeviceID)
	if deviceID == "" {
		return weathernet.Reading{}, fmt.Errorf("%w: device_id is required", weathernet.ErrInvalidPayload)
	}
	r.DeviceID = deviceID

	if r.Timestamp == "" {
		r.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	if err := s.readings.Append(ctx, r.DeviceID, r); err != nil {
		return weathernet.Reading{}, err
	}

	// Archive is best effort; the Redis list already holds the reading and
	// an archive hiccup must not fail the ingestion.
	_ = s.archive.Store(ctx, r)

	return r, nil
}
