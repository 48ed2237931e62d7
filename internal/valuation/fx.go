package valuation

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RateSource looks up the spot rate of the foreign currency in base currency.
type RateSource interface {
	Rate(ctx context.Context) (decimal.Decimal, error)
}

// FXResolver decides the single FX rate used for a run.
type FXResolver struct {
	fixed    decimal.Decimal
	fallback decimal.Decimal
	source   RateSource
	timeout  time.Duration
	log      zerolog.Logger
}

// NewFXResolver creates an FXResolver. A positive fixed rate wins over the
// source; fallback is used when the source fails or is nil.
func NewFXResolver(fixed, fallback float64, source RateSource, timeout time.Duration, log zerolog.Logger) *FXResolver {
	return &FXResolver{
		fixed:    decimal.NewFromFloat(fixed),
		fallback: decimal.NewFromFloat(fallback),
		source:   source,
		timeout:  timeout,
		log:      log.With().Str("component", "fx").Logger(),
	}
}

// Resolve returns the rate for this run. It never fails.
func (f *FXResolver) Resolve(ctx context.Context) decimal.Decimal {
	if f.fixed.IsPositive() {
		return f.fixed
	}
	if f.source == nil {
		return f.fallback
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	rate, err := f.source.Rate(ctx)
	if err != nil || !rate.IsPositive() {
		f.log.Warn().Err(err).Str("fallback", f.fallback.String()).Msg("FX lookup failed, using fallback rate")
		return f.fallback
	}
	return rate
}
