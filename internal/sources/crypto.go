package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CryptoSource reads the last traded price from the Binance ticker endpoint.
type CryptoSource struct {
	baseURL       string
	quoteCurrency string
	client        *http.Client
}

// NewCryptoSource creates a CryptoSource. quoteCurrency is appended to
// tickers that carry no "/" separator.
func NewCryptoSource(baseURL, quoteCurrency string, timeout time.Duration) *CryptoSource {
	return &CryptoSource{
		baseURL:       strings.TrimRight(baseURL, "/"),
		quoteCurrency: strings.ToUpper(quoteCurrency),
		client:        newHTTPClient(timeout),
	}
}

// Name returns the source tag.
func (s *CryptoSource) Name() string { return "crypto" }

// Pair returns the "BASE/QUOTE" pair for a raw ticker.
func (s *CryptoSource) Pair(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if strings.Contains(t, "/") {
		return t
	}
	return t + "/" + s.quoteCurrency
}

type binanceTicker struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Price fetches the last traded price of ticker's pair.
func (s *CryptoSource) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	symbol := strings.ReplaceAll(s.Pair(ticker), "/", "")
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", s.baseURL, url.QueryEscape(symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, statusError(resp)
	}

	var t binanceTicker
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse response: %w", err)
	}

	price, err := decimal.NewFromString(t.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q for %s: %w", t.Price, symbol, err)
	}
	return positive(price)
}
