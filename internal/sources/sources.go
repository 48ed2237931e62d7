// Package sources holds the upstream price adapters. Every adapter resolves
// one identifier to a positive price or returns an error; none of them panic
// or retry, callers decide what a failure means.
package sources

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoPrice is returned when a source answered but had no usable price.
	ErrNoPrice = errors.New("no price available")
	// ErrUnexpectedStatus is returned for non-200 upstream responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// browserUserAgent is sent to pages that reject non-browser clients.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func statusError(resp *http.Response) error {
	return fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, resp.Request.URL.Host)
}

func positive(price decimal.Decimal) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, ErrNoPrice
	}
	return price, nil
}
