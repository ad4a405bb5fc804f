package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"weathernet"

	"github.com/google/uuid"
)

// ArchiveSQLite mirrors every ingested reading into a local SQLite table.
// The Redis lists stay the source of truth for the query path; the archive
// is an audit trail that survives a Redis flush.
type ArchiveSQLite struct {
	db *sql.DB
}

// NewArchiveSQLite wraps an opened database. A nil db turns the archive into
// a no-op, which is how a deployment disables archiving.
func NewArchiveSQLite(db *sql.DB) *ArchiveSQLite {
	return &ArchiveSQLite{db: db}
}

// Store inserts one reading. Sensors and location are kept as JSON text so
// firmware-specific payloads survive unmodified.
func (a *ArchiveSQLite) Store(ctx context.Context, r weathernet.Reading) error {
	if a.db == nil {
		return nil
	}

	sensors, err := json.Marshal(r.Sensors)
	if err != nil {
		return fmt.Errorf("marshal sensors: %w", err)
	}

	var locPtr *string
	if r.Location != nil {
		if b, err := json.Marshal(r.Location); err == nil {
			s := string(b)
			locPtr = &s
		}
	}

	recordedAt := r.Timestamp
	if recordedAt == "" {
		recordedAt = time.Now().UTC().Format(time.RFC3339)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO readings_archive (id, device_id, recorded_at, sensors, location)
		VALUES (?, ?, ?, ?, ?)
	`,
		uuid.NewString(),
		r.DeviceID,
		recordedAt,
		string(sensors),
		locPtr,
	)
	if err != nil {
		return fmt.Errorf("archive reading for %s: %w", r.DeviceID, err)
	}
	return nil
}
