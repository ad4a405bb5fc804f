package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"weathernet"
)

// Fetcher retrieves one batch of readings from the query endpoint.
type Fetcher interface {
	Fetch(ctx context.Context) ([]weathernet.Reading, error)
}

const defaultFetchTimeout = 10 * time.Second

// HTTPFetcher polls the readings endpoint over HTTP and decodes the JSON
// array response.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher targets the given query endpoint URL. client may be nil.
func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &HTTPFetcher{url: url, client: client}
}

// Fetch performs one GET. Any transport error, non-2xx status, or non-array
// body is reported as ErrNetworkFailure so the poll loop can apply its retry
// policy uniformly.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]weathernet.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", weathernet.ErrNetworkFailure, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", weathernet.ErrNetworkFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", weathernet.ErrNetworkFailure, resp.StatusCode)
	}

	var readings []weathernet.Reading
	if err := json.NewDecoder(resp.Body).Decode(&readings); err != nil {
		// A non-array body means "no data", never a crash; the caller
		// decides whether to treat it as a failed cycle.
		return nil, fmt.Errorf("%w: decode response: %v", weathernet.ErrNetworkFailure, err)
	}
	return readings, nil
}
