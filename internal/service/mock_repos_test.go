package service

import (
	"context"
	"fmt"
	"sync"

	"weathernet"
)

// ---- Repository mocks ----

// fakeReadingRepo is an in-memory stand-in for the Redis reading store.
type fakeReadingRepo struct {
	mu        sync.Mutex
	series    map[string][]weathernet.Reading
	appendErr error
	readErr   error
}

func newFakeReadingRepo() *fakeReadingRepo {
	return &fakeReadingRepo{series: make(map[string][]weathernet.Reading)}
}

func (f *fakeReadingRepo) Append(ctx context.Context, deviceID string, r weathernet.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	r.DeviceID = deviceID
	f.series[deviceID] = append(f.series[deviceID], r)
	return nil
}

func (f *fakeReadingRepo) ReadAll(ctx context.Context, deviceID string) ([]weathernet.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return append([]weathernet.Reading(nil), f.series[deviceID]...), nil
}

func (f *fakeReadingRepo) ReadLast(ctx context.Context, deviceID string, n int) ([]weathernet.Reading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: read last %d", weathernet.ErrInvalidArgument, n)
	}
	s := f.series[deviceID]
	if n > len(s) {
		n = len(s)
	}
	return append([]weathernet.Reading(nil), s[len(s)-n:]...), nil
}

func (f *fakeReadingRepo) Devices(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	ids := make([]string, 0, len(f.series))
	for id := range f.series {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeArchiveRepo struct {
	mu     sync.Mutex
	stored []weathernet.Reading
	err    error
}

func (f *fakeArchiveRepo) Store(ctx context.Context, r weathernet.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.stored = append(f.stored, r)
	return nil
}

func (f *fakeArchiveRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

type fakeApplicationRepo struct {
	saved   []weathernet.NodeApplication
	saveErr error
}

func (f *fakeApplicationRepo) Save(ctx context.Context, app weathernet.NodeApplication) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, app)
	return nil
}

func (f *fakeApplicationRepo) Get(ctx context.Context, walletAddress string) (*weathernet.NodeApplication, error) {
	for i := range f.saved {
		if f.saved[i].AvaxWalletAddress == walletAddress {
			return &f.saved[i], nil
		}
	}
	return nil, nil
}
