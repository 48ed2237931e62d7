package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-valuation/internal/quotepage"
)

// OptionsSource scrapes the last option premium from a per-ticker quotes page.
type OptionsSource struct {
	baseURL string
	client  *http.Client
}

// NewOptionsSource creates an OptionsSource for pages at baseURL/{TICKER}.
func NewOptionsSource(baseURL string, timeout time.Duration) *OptionsSource {
	return &OptionsSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(timeout),
	}
}

// Name returns the source tag.
func (s *OptionsSource) Name() string { return "options" }

// CleanTicker strips the exchange suffix and upper-cases the ticker.
func CleanTicker(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	return strings.TrimSuffix(t, ".SA")
}

// Price fetches the quotes page and extracts the last price.
func (s *OptionsSource) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	endpoint := s.baseURL + "/" + url.PathEscape(CleanTicker(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, statusError(resp)
	}

	price, err := quotepage.ExtractLastPrice(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}
	return positive(price)
}
