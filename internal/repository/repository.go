package repository

import (
	"context"
	"database/sql"

	"weathernet"

	"github.com/redis/go-redis/v9"
)

// ReadingRepo is the append-only per-device reading store.
type ReadingRepo interface {
	// Append adds one reading to the tail of the device's series.
	Append(ctx context.Context, deviceID string, r weathernet.Reading) error
	// ReadAll returns the full series for a device, oldest first.
	ReadAll(ctx context.Context, deviceID string) ([]weathernet.Reading, error)
	// ReadLast returns at most the last n readings, oldest-to-newest within
	// that suffix. n must be >= 1.
	ReadLast(ctx context.Context, deviceID string, n int) ([]weathernet.Reading, error)
	// Devices lists every device id that has stored at least one reading.
	Devices(ctx context.Context) ([]string, error)
}

// ArchiveRepo keeps a durable long-term copy of ingested readings.
type ArchiveRepo interface {
	Store(ctx context.Context, r weathernet.Reading) error
}

// ApplicationRepo persists node operator applications.
type ApplicationRepo interface {
	Save(ctx context.Context, app weathernet.NodeApplication) error
	Get(ctx context.Context, walletAddress string) (*weathernet.NodeApplication, error)
}

type Repository struct {
	Readings     ReadingRepo
	Archive      ArchiveRepo
	Applications ApplicationRepo
}

// NewRepository wires the storage backends. rdb may be nil when Redis is not
// configured; reads then degrade to empty results and appends fail with
// ErrStorageUnavailable. db may be nil when archiving is disabled.
func NewRepository(rdb *redis.Client, db *sql.DB) *Repository {
	return &Repository{
		Readings:     NewReadingRedis(rdb),
		Archive:      NewArchiveSQLite(db),
		Applications: NewApplicationRedis(rdb),
	}
}
