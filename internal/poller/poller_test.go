package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weathernet"
	"weathernet/internal/state"
)

// ---- test doubles ----

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (ft *fakeTicker) C() <-chan time.Time { return ft.ch }

func (ft *fakeTicker) Stop() {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.stopped = true
}

func (ft *fakeTicker) isStopped() bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.stopped
}

func (ft *fakeTicker) tick() { ft.ch <- time.Now() }

type fakeTimer struct {
	f       func()
	mu      sync.Mutex
	stopped bool
}

func (ft *fakeTimer) Stop() bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	was := ft.stopped
	ft.stopped = true
	return !was
}

func (ft *fakeTimer) fire() {
	ft.mu.Lock()
	stopped := ft.stopped
	ft.mu.Unlock()
	if !stopped {
		ft.f()
	}
}

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
	timers  []*fakeTimer
}

func (c *fakeClock) Now() time.Time { return time.Now() }

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	ft := &fakeTicker{ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, ft)
	return ft
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	ft := &fakeTimer{f: f}
	c.timers = append(c.timers, ft)
	return ft
}

func (c *fakeClock) tickerAt(i int) *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[i]
}

func (c *fakeClock) timerAt(i int) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timers[i]
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *fakeClock) timerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

type stubFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
	batch []weathernet.Reading
	block chan struct{}
}

func (f *stubFetcher) Fetch(ctx context.Context) ([]weathernet.Reading, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	batch := f.batch
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *stubFetcher) set(batch []weathernet.Reading, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batch = batch
	f.err = err
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func batchOf(ids ...string) []weathernet.Reading {
	out := make([]weathernet.Reading, 0, len(ids))
	for _, id := range ids {
		out = append(out, weathernet.Reading{
			DeviceID: id,
			Sensors:  map[string]any{weathernet.SensorTemperature: 25.0},
		})
	}
	return out
}

// ---- tests ----

func TestStart_FetchesImmediatelyAndReplaces(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	fetcher := &stubFetcher{batch: batchOf("A", "B")}
	store := state.NewStore()
	svc := New(fetcher, store, Config{Interval: 15 * time.Second}, clk)
	defer svc.Stop()

	svc.Start(0)

	waitFor(t, "initial fetch applied", func() bool {
		return len(store.Snapshot().Readings) == 2
	})
	snap := store.Snapshot()
	if snap.Loading {
		t.Fatal("loading should be cleared after a successful cycle")
	}
	if snap.Error != "" {
		t.Fatalf("unexpected error %q", snap.Error)
	}
	if snap.Stats.TotalDevices != 2 {
		t.Fatalf("stats not recomputed: %+v", snap.Stats)
	}
}

func TestStart_TickTriggersNextFetch(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	fetcher := &stubFetcher{batch: batchOf("A")}
	svc := New(fetcher, state.NewStore(), Config{Interval: time.Minute}, clk)
	defer svc.Stop()

	svc.Start(0)
	waitFor(t, "initial fetch", func() bool { return fetcher.callCount() == 1 })

	clk.tickerAt(0).tick()
	waitFor(t, "tick-driven fetch", func() bool { return fetcher.callCount() == 2 })
}

func TestStart_TwiceKeepsSingleLoop(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	fetcher := &stubFetcher{batch: batchOf("A")}
	svc := New(fetcher, state.NewStore(), Config{Interval: time.Minute}, clk)
	defer svc.Stop()

	svc.Start(0)
	waitFor(t, "first start fetch", func() bool { return fetcher.callCount() == 1 })
	svc.Start(0)
	waitFor(t, "second start fetch", func() bool { return fetcher.callCount() == 2 })
	if clk.tickerCount() != 2 {
		t.Fatalf("expected 2 tickers created, got %d", clk.tickerCount())
	}
	if !clk.tickerAt(0).isStopped() {
		t.Fatal("first loop's ticker must be stopped by the second Start")
	}
	if clk.tickerAt(1).isStopped() {
		t.Fatal("second loop's ticker should still be active")
	}

	// Only the surviving loop reacts to ticks.
	clk.tickerAt(1).tick()
	waitFor(t, "tick on surviving loop", func() bool { return fetcher.callCount() == 3 })
	if fetcher.callCount() != 3 {
		t.Fatalf("expected exactly 3 fetches, got %d", fetcher.callCount())
	}
}

func TestRetry_BoundedAttemptsThenSticky(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	store := state.NewStore()
	svc := New(fetcher, store, Config{
		Interval:      time.Minute,
		RetryAttempts: 2,
		RetryDelay:    2 * time.Second,
	}, clk)
	defer svc.Stop()

	svc.Start(0)

	// Initial fetch fails and schedules the first retry.
	waitFor(t, "first retry armed", func() bool { return clk.timerCount() == 1 })
	if snap := store.Snapshot(); snap.Error == "" {
		t.Fatal("failure must be recorded in the state store")
	}

	// First retry fails and schedules the second.
	clk.timerAt(0).fire()
	if clk.timerCount() != 2 {
		t.Fatalf("expected second retry armed, have %d timers", clk.timerCount())
	}

	// Second retry fails; the budget is exhausted, nothing further.
	clk.timerAt(1).fire()
	if clk.timerCount() != 2 {
		t.Fatalf("retry scheduled beyond the configured limit: %d timers", clk.timerCount())
	}

	// A regular tick still fails but must not schedule an extra retry.
	clk.tickerAt(0).tick()
	waitFor(t, "tick fetch after exhaustion", func() bool { return fetcher.callCount() == 4 })
	if clk.timerCount() != 2 {
		t.Fatalf("failed tick past the budget armed a retry: %d timers", clk.timerCount())
	}

	// A successful poll resets the counter and clears the error.
	fetcher.set(batchOf("A"), nil)
	clk.tickerAt(0).tick()
	waitFor(t, "recovery", func() bool { return store.Snapshot().Error == "" })

	// With the counter reset, a new failure may retry again.
	fetcher.set(nil, errors.New("connection refused"))
	clk.tickerAt(0).tick()
	waitFor(t, "retry after reset", func() bool { return clk.timerCount() == 3 })
}

func TestRetry_DisabledSchedulesNothing(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	fetcher := &stubFetcher{err: errors.New("boom")}
	store := state.NewStore()
	svc := New(fetcher, store, Config{Interval: time.Minute, RetryAttempts: 0}, clk)
	defer svc.Stop()

	svc.Start(0)
	waitFor(t, "failed fetch recorded", func() bool { return store.Snapshot().Error != "" })
	if clk.timerCount() != 0 {
		t.Fatalf("retries disabled but %d timers armed", clk.timerCount())
	}
}

func TestFailure_KeepsLastGoodSnapshot(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	fetcher := &stubFetcher{batch: batchOf("A", "B")}
	store := state.NewStore()
	svc := New(fetcher, store, Config{Interval: time.Minute}, clk)
	defer svc.Stop()

	svc.Start(0)
	waitFor(t, "initial data", func() bool { return len(store.Snapshot().Readings) == 2 })

	fetcher.set(nil, errors.New("gateway timeout"))
	clk.tickerAt(0).tick()
	waitFor(t, "error recorded", func() bool { return store.Snapshot().Error != "" })

	snap := store.Snapshot()
	if len(snap.Readings) != 2 {
		t.Fatalf("stale-but-present snapshot lost: %d readings", len(snap.Readings))
	}
}

func TestAppendMode_Concatenates(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	fetcher := &stubFetcher{batch: batchOf("A")}
	store := state.NewStore()
	svc := New(fetcher, store, Config{Interval: time.Minute, Mode: ModeAppend}, clk)
	defer svc.Stop()

	svc.Start(0)
	waitFor(t, "first batch", func() bool { return len(store.Snapshot().Readings) == 1 })

	clk.tickerAt(0).tick()
	waitFor(t, "second batch appended", func() bool { return len(store.Snapshot().Readings) == 2 })
}

func TestStop_CancelsTimersButNotInFlightFetch(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	release := make(chan struct{})
	fetcher := &stubFetcher{batch: batchOf("A"), block: release}
	store := state.NewStore()
	svc := New(fetcher, store, Config{Interval: time.Minute}, clk)

	svc.Start(0)
	waitFor(t, "fetch in flight", func() bool { return fetcher.callCount() == 1 })

	svc.Stop()
	if svc.Running() {
		t.Fatal("service should report stopped")
	}
	if !clk.tickerAt(0).isStopped() {
		t.Fatal("ticker must be stopped")
	}

	// The in-flight fetch completes after Stop and its result still lands.
	close(release)
	waitFor(t, "late result applied", func() bool { return len(store.Snapshot().Readings) == 1 })

	// Stop again is a no-op.
	svc.Stop()
}

func TestStop_CancelsPendingRetry(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	fetcher := &stubFetcher{err: errors.New("boom")}
	svc := New(fetcher, state.NewStore(), Config{
		Interval:      time.Minute,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}, clk)

	svc.Start(0)
	waitFor(t, "retry armed", func() bool { return clk.timerCount() == 1 })

	svc.Stop()
	calls := fetcher.callCount()
	clk.timerAt(0).fire() // a stopped timer must not run its callback
	if fetcher.callCount() != calls {
		t.Fatal("cancelled retry still fetched")
	}
}

func TestRefresh_SkipsWhileFetchInFlight(t *testing.T) {
	t.Parallel()
	clk := &fakeClock{}
	release := make(chan struct{})
	fetcher := &stubFetcher{batch: batchOf("A"), block: release}
	store := state.NewStore()
	svc := New(fetcher, store, Config{Interval: time.Minute}, clk)
	defer svc.Stop()

	svc.Start(0)
	waitFor(t, "fetch in flight", func() bool { return fetcher.callCount() == 1 })

	// Concurrent refresh must not start a second overlapping fetch.
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("skipped refresh should not error: %v", err)
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("overlapping fetch started: %d calls", fetcher.callCount())
	}

	close(release)
	waitFor(t, "blocked fetch finished", func() bool { return len(store.Snapshot().Readings) == 1 })
}

func TestRefresh_OneShotWhileIdle(t *testing.T) {
	t.Parallel()
	fetcher := &stubFetcher{batch: batchOf("A")}
	store := state.NewStore()
	svc := New(fetcher, store, Config{}, &fakeClock{})

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(store.Snapshot().Readings) != 1 {
		t.Fatal("refresh did not apply the batch")
	}

	// A failed idle refresh reports the error and schedules no retries.
	fetcher.set(nil, errors.New("boom"))
	if err := svc.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
}
