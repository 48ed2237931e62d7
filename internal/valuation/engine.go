package valuation

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-valuation/internal/fixedincome"
	"github.com/trogers1052/portfolio-valuation/internal/models"
	"github.com/trogers1052/portfolio-valuation/internal/sources"
	"golang.org/x/sync/errgroup"
)

// EngineConfig tunes the worker pool.
type EngineConfig struct {
	BaseCurrency    string
	ForeignCurrency string
	Workers         int
	RequestTimeout  time.Duration
	// RequestDelay spaces calls to the same source within one worker lane.
	RequestDelay time.Duration
}

// Engine resolves and values a batch of positions.
type Engine struct {
	router *Router
	rates  *fixedincome.RateCache
	calc   Calculator
	cfg    EngineConfig
	now    func() time.Time
	log    zerolog.Logger
}

// NewEngine creates an Engine. rates may be nil when no position is
// CDI-linked; the reference rate then reads as the fixed-income fallback.
func NewEngine(router *Router, rates *fixedincome.RateCache, cfg EngineConfig, log zerolog.Logger) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Engine{
		router: router,
		rates:  rates,
		calc:   NewCalculator(cfg.BaseCurrency),
		cfg:    cfg,
		now:    time.Now,
		log:    log.With().Str("component", "engine").Logger(),
	}
}

// SetClock replaces the wall clock used for fixed-income elapsed time and
// record timestamps.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Run values every position, fetching prices on a bounded pool of worker
// lanes. Records come back in input order. Source failures never fail the
// batch; only the cancellation of ctx does.
func (e *Engine) Run(ctx context.Context, runID string, positions []models.Position, fx decimal.Decimal) ([]models.ValuationRecord, error) {
	records := make([]models.ValuationRecord, len(positions))
	jobs := make(chan int)

	g, gctx := errgroup.WithContext(ctx)

	lanes := min(e.cfg.Workers, max(len(positions), 1))
	for lane := 0; lane < lanes; lane++ {
		g.Go(func() error {
			pacer := sources.NewPacer(e.cfg.RequestDelay)
			for i := range jobs {
				records[i] = e.Value(gctx, runID, positions[i], fx, pacer)
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for i := range positions {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Value resolves and values a single position.
func (e *Engine) Value(ctx context.Context, runID string, p models.Position, fx decimal.Decimal, pacer *sources.Pacer) models.ValuationRecord {
	quote := e.Resolve(ctx, p, pacer)

	if !strings.EqualFold(p.Currency, e.cfg.BaseCurrency) && e.cfg.ForeignCurrency != "" &&
		!strings.EqualFold(p.Currency, e.cfg.ForeignCurrency) {
		e.log.Warn().
			Str("ticker", p.Ticker).
			Str("currency", p.Currency).
			Msg("Currency is neither base nor foreign, converting with the foreign rate")
	}

	record := e.calc.Value(p, quote, fx)
	record.RunID = runID
	record.UpdatedAt = e.now()

	if record.Unresolved() {
		e.log.Warn().Str("ticker", p.Ticker).Str("class", record.Class).Msg("No price resolved, position valued at zero")
	}

	return record
}

// Resolve runs the routed strategy for p. Failures come back as an
// unresolved quote and a warning.
func (e *Engine) Resolve(ctx context.Context, p models.Position, pacer *sources.Pacer) models.ResolvedQuote {
	none := models.ResolvedQuote{Ticker: p.Ticker, Price: decimal.Zero, Source: models.SourceNone}

	strategy := e.router.Route(p.Class)
	switch strategy.Kind {
	case StrategyMarket:
		if pacer != nil {
			if err := pacer.Wait(ctx, strategy.Source.Name()); err != nil {
				return none
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
		defer cancel()

		price, err := strategy.Source.Price(callCtx, p.Ticker)
		if err != nil {
			e.log.Warn().
				Err(err).
				Str("ticker", p.Ticker).
				Str("source", strategy.Tag).
				Msg("Price lookup failed")
			return none
		}
		return models.ResolvedQuote{Ticker: p.Ticker, Price: price, Source: strategy.Tag}

	case StrategyFixedIncome:
		return e.resolveFixedIncome(ctx, p)

	default:
		e.log.Warn().Str("ticker", p.Ticker).Str("class", p.ClassLabel()).Msg("Unknown asset class")
		return none
	}
}

func (e *Engine) resolveFixedIncome(ctx context.Context, p models.Position) models.ResolvedQuote {
	none := models.ResolvedQuote{Ticker: p.Ticker, Price: decimal.Zero, Source: models.SourceNone}

	if p.StartDate == nil || strings.TrimSpace(p.Indexer) == "" {
		e.log.Debug().Str("ticker", p.Ticker).Msg("Fixed income without start date or indexer")
		return none
	}
	if !p.Quantity.IsPositive() {
		return none
	}

	indexer := fixedincome.ParseIndexer(p.Indexer)
	if indexer.Kind != fixedincome.IndexerNone && !indexer.Parsed {
		e.log.Warn().Str("ticker", p.Ticker).Str("indexer", p.Indexer).Msg("Indexer percentage not found, using default rate")
	}

	reference := fixedincome.FallbackAnnualRate
	if indexer.NeedsReferenceRate() && e.rates != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
		reference = e.rates.Get(callCtx)
		cancel()
	}

	principal := p.Quantity.Mul(p.AveragePrice).InexactFloat64()
	pv := fixedincome.PresentValue(principal, p.StartDate, p.Indexer, reference, e.now())
	if math.IsNaN(pv) || math.IsInf(pv, 0) {
		e.log.Warn().Str("ticker", p.Ticker).Str("indexer", p.Indexer).Msg("Fixed income value is not finite")
		return none
	}

	price := decimal.NewFromFloat(pv).Div(p.Quantity)
	if !price.IsPositive() {
		return none
	}
	return models.ResolvedQuote{Ticker: p.Ticker, Price: price, Source: models.SourceFixedIncome}
}
