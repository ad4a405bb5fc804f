package service

import (
	"context"
	"time"

	"weathernet"
	"weathernet/internal/repository"
)

// Ingest accepts a single validated reading and persists it.
type Ingest interface {
	Store(ctx context.Context, r weathernet.Reading) (weathernet.Reading, error)
}

// Query returns the most recent readings across the selected devices,
// normalized into the canonical sensor shape.
type Query interface {
	Latest(ctx context.Context, limit int) ([]weathernet.Reading, error)
}

// Applications handles node operator intake.
type Applications interface {
	Submit(ctx context.Context, app weathernet.NodeApplication) (string, error)
}

// Simulator runs the background loop that feeds randomized readings through
// ingestion. Stop via context cancellation in main() for graceful shutdown.
type Simulator interface {
	Run(ctx context.Context, tick time.Duration)
}

// Dashboard is the poll-driven client view. Implemented by the poller;
// assigned during wiring in main().
type Dashboard interface {
	Snapshot() weathernet.Snapshot
	Refresh(ctx context.Context) error
}

// Options carries the query-side and simulator knobs from configuration.
type Options struct {
	// QueryDevices is the fixed device selection for the query endpoint.
	// Empty means "all known devices" via the store's device index.
	QueryDevices []string
	// DefaultLimit bounds each device's suffix when the caller does not
	// give one. Zero falls back to the package default.
	DefaultLimit int
}

// Service aggregates all sub-services behind one wiring point.
type Service struct {
	Ingest
	Query
	Applications
	Simulator
	Dashboard
}

// NewService wires the repository layer into concrete services. Dashboard is
// left nil here: it depends on the running HTTP endpoint and is attached by
// the caller once the poller exists.
func NewService(repos *repository.Repository, opts Options) *Service {
	ingest := NewIngestService(repos.Readings, repos.Archive)
	return &Service{
		Ingest:       ingest,
		Query:        NewQueryService(repos.Readings, opts.QueryDevices, opts.DefaultLimit),
		Applications: NewApplicationService(repos.Applications),
		Simulator:    NewSimulatorService(ingest),
	}
}
