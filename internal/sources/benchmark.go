package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// BenchmarkClient fetches the latest value of an annualized benchmark rate
// series (BCB SGS format: [{"data": "dd/mm/yyyy", "valor": "14.90"}]).
type BenchmarkClient struct {
	url    string
	client *http.Client
}

// NewBenchmarkClient creates a BenchmarkClient for a series URL.
func NewBenchmarkClient(url string, timeout time.Duration) *BenchmarkClient {
	return &BenchmarkClient{url: url, client: newHTTPClient(timeout)}
}

type seriesPoint struct {
	Date  string `json:"data"`
	Value string `json:"valor"`
}

// FetchReferenceRate returns the latest series value as a fraction.
func (c *BenchmarkClient) FetchReferenceRate(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, statusError(resp)
	}

	var points []seriesPoint
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return 0, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("benchmark series is empty: %w", ErrNoPrice)
	}

	latest := points[len(points)-1]
	pct, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(latest.Value), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid benchmark value %q: %w", latest.Value, err)
	}
	if pct <= 0 {
		return 0, fmt.Errorf("benchmark value %q: %w", latest.Value, ErrNoPrice)
	}

	return pct / 100, nil
}
