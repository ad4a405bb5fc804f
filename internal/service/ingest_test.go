package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"weathernet"
)

func TestIngestStore_Success(t *testing.T) {
	t.Parallel()
	readings := newFakeReadingRepo()
	archive := &fakeArchiveRepo{}
	svc := NewIngestService(readings, archive)

	in := weathernet.Reading{
		DeviceID:  "esp32_node_001",
		Timestamp: "2025-06-01T10:00:00Z",
		Sensors:   map[string]any{weathernet.SensorTemperature: 24.5},
	}
	stored, err := svc.Store(context.Background(), in)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if stored.Timestamp != in.Timestamp {
		t.Fatalf("caller timestamp must be kept, got %q", stored.Timestamp)
	}

	series, _ := readings.ReadAll(context.Background(), "esp32_node_001")
	if len(series) != 1 {
		t.Fatalf("expected 1 stored reading, got %d", len(series))
	}
	if archive.count() != 1 {
		t.Fatalf("expected reading archived, got %d", archive.count())
	}
}

func TestIngestStore_FillsMissingTimestamp(t *testing.T) {
	t.Parallel()
	svc := NewIngestService(newFakeReadingRepo(), &fakeArchiveRepo{})

	stored, err := svc.Store(context.Background(), weathernet.Reading{DeviceID: "dev_a"})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if stored.Timestamp == "" {
		t.Fatal("expected timestamp to be filled at append time")
	}
	if _, err := time.Parse(time.RFC3339, stored.Timestamp); err != nil {
		t.Fatalf("filled timestamp not RFC3339: %q", stored.Timestamp)
	}
}

func TestIngestStore_RejectsMissingDeviceID(t *testing.T) {
	t.Parallel()
	svc := NewIngestService(newFakeReadingRepo(), &fakeArchiveRepo{})

	for _, id := range []string{"", "   "} {
		_, err := svc.Store(context.Background(), weathernet.Reading{DeviceID: id})
		if !errors.Is(err, weathernet.ErrInvalidPayload) {
			t.Fatalf("device_id %q: expected ErrInvalidPayload, got %v", id, err)
		}
	}
}

func TestIngestStore_SurfacesStorageFailure(t *testing.T) {
	t.Parallel()
	readings := newFakeReadingRepo()
	readings.appendErr = fmt.Errorf("%w: connection refused", weathernet.ErrStorageUnavailable)
	svc := NewIngestService(readings, &fakeArchiveRepo{})

	_, err := svc.Store(context.Background(), weathernet.Reading{DeviceID: "dev_a"})
	if !errors.Is(err, weathernet.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestIngestStore_ArchiveFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	readings := newFakeReadingRepo()
	archive := &fakeArchiveRepo{err: errors.New("disk full")}
	svc := NewIngestService(readings, archive)

	if _, err := svc.Store(context.Background(), weathernet.Reading{DeviceID: "dev_a"}); err != nil {
		t.Fatalf("archive failure must not fail ingestion: %v", err)
	}
}
