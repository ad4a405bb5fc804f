// Package poller drives the dashboard's fetch cycle against the query
// endpoint: one loop per service instance, bounded retries with a fixed
// delay, and at most one fetch in flight.
package poller

import (
	"context"
	"sync"
	"time"

	"weathernet"
	"weathernet/internal/state"
)

// Mode decides how a fetched batch is applied to the state store.
type Mode string

const (
	// ModeReplace swaps the full reading set each cycle. Production: the
	// endpoint returns a complete snapshot.
	ModeReplace Mode = "replace"
	// ModeAppend concatenates each batch. Development: the feed is treated
	// as incremental to simulate real-time updates.
	ModeAppend Mode = "append"
)

// DefaultInterval applies when neither configuration nor caller give one.
const DefaultInterval = 15 * time.Second

// Config carries the polling knobs. The service behaves correctly for any
// valid combination, including retries disabled (RetryAttempts 0).
type Config struct {
	Interval      time.Duration
	Mode          Mode
	RetryAttempts int
	RetryDelay    time.Duration
}

// Service owns the poll loop, its timers and the retry counter. It is an
// explicitly constructed instance: callers own its lifecycle, starting it on
// boot and stopping it on shutdown.
type Service struct {
	fetcher Fetcher
	store   *state.Store
	cfg     Config
	clock   Clock

	mu         sync.Mutex
	running    bool
	cancelLoop context.CancelFunc
	ticker     Ticker
	retryTimer Timer
	retries    int
	fetching   bool
}

// New builds a poll service over the given fetcher and state store.
// clock may be nil for the wall clock.
func New(fetcher Fetcher, store *state.Store, cfg Config, clock Clock) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeReplace
	}
	if clock == nil {
		clock = NewClock()
	}
	return &Service{fetcher: fetcher, store: store, cfg: cfg, clock: clock}
}

// Start begins polling at the given interval (0 means the configured one).
// If a loop is already active it is stopped first: there is never more than
// one loop per instance. The first fetch fires immediately.
func (s *Service) Start(interval time.Duration) {
	if interval <= 0 {
		interval = s.cfg.Interval
	}

	s.mu.Lock()
	s.stopLocked()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelLoop = cancel
	s.ticker = s.clock.NewTicker(interval)
	s.running = true
	ticker := s.ticker
	s.mu.Unlock()

	go s.loop(ctx, ticker)
}

// Stop cancels future ticks and any pending retry timer. An in-flight fetch
// is not cancelled; its result is still applied to the state store when it
// lands. Calling Stop while idle is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Service) stopLocked() {
	if !s.running {
		return
	}
	s.running = false
	if s.cancelLoop != nil {
		s.cancelLoop()
		s.cancelLoop = nil
	}
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
}

// Running reports whether a poll loop is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Snapshot returns the state store's current view.
func (s *Service) Snapshot() weathernet.Snapshot {
	return s.store.Snapshot()
}

// Refresh runs one fetch cycle outside the regular schedule, sharing the
// non-overlap discipline with the loop. The error, if any, is both recorded
// in the state store and returned.
func (s *Service) Refresh(ctx context.Context) error {
	return s.runCycle(ctx)
}

// loop consumes ticks until the loop context is cancelled. The fetch itself
// runs on a background context so stopping the loop never aborts a request
// already in flight.
func (s *Service) loop(ctx context.Context, ticker Ticker) {
	_ = s.runCycle(context.Background())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			_ = s.runCycle(context.Background())
		}
	}
}

// runCycle performs one fetch-and-apply iteration. A cycle starting while
// another fetch is in flight is skipped: fetches are serialized per
// instance, and the regular ticker keeps its own schedule regardless.
func (s *Service) runCycle(ctx context.Context) error {
	s.mu.Lock()
	if s.fetching {
		s.mu.Unlock()
		return nil
	}
	s.fetching = true
	s.mu.Unlock()

	s.store.SetLoading(true)
	s.store.ClearError()

	readings, err := s.fetcher.Fetch(ctx)
	if err != nil {
		// The previous snapshot stays visible alongside the error.
		s.store.SetError(err.Error())
	} else {
		s.mu.Lock()
		s.retries = 0
		mode := s.cfg.Mode
		s.mu.Unlock()

		s.store.SetLoading(false)
		if mode == ModeAppend {
			s.store.Append(readings)
		} else {
			s.store.Replace(readings)
		}
	}

	s.mu.Lock()
	s.fetching = false
	s.mu.Unlock()

	// Armed only once the fetch slot is free, so a retry firing immediately
	// can never be swallowed by its own cycle's cleanup.
	if err != nil {
		s.scheduleRetry()
	}
	return err
}

// scheduleRetry arms exactly one retry after the fixed delay, independent of
// the normal poll interval, while the attempt budget lasts. A successful
// cycle resets the budget; failed regular ticks past the budget schedule
// nothing further.
func (s *Service) scheduleRetry() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		// Manual one-shot refreshes report their error to the caller
		// instead of rescheduling themselves.
		return
	}
	if s.cfg.RetryAttempts <= 0 || s.retries >= s.cfg.RetryAttempts {
		return
	}
	s.retries++
	s.retryTimer = s.clock.AfterFunc(s.cfg.RetryDelay, func() {
		_ = s.runCycle(context.Background())
	})
}
