package handlers

import (
	"context"

	"weathernet"
)

// ---- Service Mocks ----

type mockIngest struct {
	stored    []weathernet.Reading
	returnErr error
}

func (m *mockIngest) Store(ctx context.Context, r weathernet.Reading) (weathernet.Reading, error) {
	if m.returnErr != nil {
		return weathernet.Reading{}, m.returnErr
	}
	if r.Timestamp == "" {
		r.Timestamp = "2025-06-01T10:00:00Z"
	}
	m.stored = append(m.stored, r)
	return r, nil
}

type mockQuery struct {
	resp      []weathernet.Reading
	returnErr error
	lastLimit int
	calls     int
}

func (m *mockQuery) Latest(ctx context.Context, limit int) ([]weathernet.Reading, error) {
	m.calls++
	m.lastLimit = limit
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.resp, nil
}

type mockApplications struct {
	id        string
	returnErr error
	lastApp   weathernet.NodeApplication
	calls     int
}

func (m *mockApplications) Submit(ctx context.Context, app weathernet.NodeApplication) (string, error) {
	m.calls++
	m.lastApp = app
	if m.returnErr != nil {
		return "", m.returnErr
	}
	return m.id, nil
}

type mockDashboard struct {
	snap       weathernet.Snapshot
	refreshErr error
	refreshed  int
}

func (m *mockDashboard) Snapshot() weathernet.Snapshot {
	return m.snap
}

func (m *mockDashboard) Refresh(ctx context.Context) error {
	m.refreshed++
	return m.refreshErr
}
