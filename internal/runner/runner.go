// Package runner performs one revaluation end to end: load positions,
// resolve prices, replace the snapshot, then mirror and announce it.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-valuation/internal/models"
	"github.com/trogers1052/portfolio-valuation/internal/valuation"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("revaluation already in progress")

// PositionSource loads the wallet.
type PositionSource interface {
	LoadPositions(ctx context.Context) ([]models.Position, error)
}

// SnapshotSink replaces the stored snapshot with a new set of records.
type SnapshotSink interface {
	ReplaceSnapshot(ctx context.Context, records []models.ValuationRecord) error
}

// EventPublisher announces a replaced snapshot.
type EventPublisher interface {
	PublishValuationsUpdated(ctx context.Context, event models.RevaluationEvent) error
}

// Summary describes a finished run.
type Summary struct {
	RunID        string          `json:"run_id"`
	Reason       string          `json:"reason"`
	Positions    int             `json:"positions"`
	Unresolved   int             `json:"unresolved"`
	BaseCurrency string          `json:"base_currency"`
	FXRate       decimal.Decimal `json:"fx_rate"`
	TotalBase    decimal.Decimal `json:"total_base"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"`
	StartedAt    time.Time       `json:"started_at"`
	Duration     time.Duration   `json:"duration"`
}

// Snapshot is the latest successful run held in memory.
type Snapshot struct {
	Summary Summary                  `json:"summary"`
	Records []models.ValuationRecord `json:"records"`
}

// Options wires a Runner. Sink is required; Mirror and Publisher are
// optional and their failures never fail a run.
type Options struct {
	Positions    PositionSource
	Engine       *valuation.Engine
	FX           *valuation.FXResolver
	Sink         SnapshotSink
	Mirror       SnapshotSink
	Publisher    EventPublisher
	BaseCurrency string
}

// Runner serializes revaluation runs.
type Runner struct {
	opts  Options
	log   zerolog.Logger
	newID func() string

	running sync.Mutex

	mu     sync.RWMutex
	latest *Snapshot
}

// New creates a Runner.
func New(opts Options, log zerolog.Logger) *Runner {
	return &Runner{
		opts:  opts,
		log:   log.With().Str("component", "runner").Logger(),
		newID: uuid.NewString,
	}
}

// Revalue runs once and drops the summary. It satisfies the Kafka trigger
// consumer and the scheduler job.
func (r *Runner) Revalue(ctx context.Context, reason string) error {
	_, err := r.Run(ctx, reason)
	return err
}

// Run performs one revaluation. Configuration and primary sink errors fail
// the run and leave the previous snapshot in place.
func (r *Runner) Run(ctx context.Context, reason string) (*Summary, error) {
	if !r.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.running.Unlock()

	started := time.Now()
	runID := r.newID()
	log := r.log.With().Str("run_id", runID).Logger()
	log.Info().Str("reason", reason).Msg("Revaluation started")

	positions, err := r.opts.Positions.LoadPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	positions = r.normalize(positions, log)

	fx := decimal.NewFromInt(1)
	if r.opts.FX != nil {
		fx = r.opts.FX.Resolve(ctx)
	}
	log.Info().Int("positions", len(positions)).Str("fx_rate", fx.String()).Msg("Resolving prices")

	records, err := r.opts.Engine.Run(ctx, runID, positions, fx)
	if err != nil {
		return nil, fmt.Errorf("failed to value positions: %w", err)
	}

	if err := r.opts.Sink.ReplaceSnapshot(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	summary := summarize(records, r.opts.BaseCurrency)
	summary.RunID = runID
	summary.Reason = reason
	summary.FXRate = fx
	summary.StartedAt = started
	summary.Duration = time.Since(started)

	if r.opts.Mirror != nil {
		if err := r.opts.Mirror.ReplaceSnapshot(ctx, records); err != nil {
			log.Warn().Err(err).Msg("Snapshot mirror failed")
		}
	}
	if r.opts.Publisher != nil {
		if err := r.opts.Publisher.PublishValuationsUpdated(ctx, summary.Event()); err != nil {
			log.Warn().Err(err).Msg("Failed to publish valuations event")
		}
	}

	r.mu.Lock()
	r.latest = &Snapshot{Summary: summary, Records: records}
	r.mu.Unlock()

	log.Info().
		Int("positions", summary.Positions).
		Int("unresolved", summary.Unresolved).
		Str("total", display(summary.TotalBase, summary.BaseCurrency)).
		Str("profit_loss", display(summary.ProfitLoss, summary.BaseCurrency)).
		Dur("duration", summary.Duration).
		Msg("Revaluation finished")

	return &summary, nil
}

// Latest returns the snapshot of the last successful run.
func (r *Runner) Latest() (*Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.latest != nil
}

// Seed installs a previously stored snapshot as the latest one, so the API
// has something to serve before the first run in this process.
func (r *Runner) Seed(records []models.ValuationRecord) {
	if len(records) == 0 {
		return
	}
	summary := summarize(records, r.opts.BaseCurrency)
	summary.RunID = records[0].RunID
	summary.Reason = "restored"
	summary.StartedAt = records[0].UpdatedAt

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		r.latest = &Snapshot{Summary: summary, Records: records}
	}
}

func (r *Runner) normalize(positions []models.Position, log zerolog.Logger) []models.Position {
	out := positions[:0]
	for i, p := range positions {
		if clamped := p.Normalize(r.opts.BaseCurrency); len(clamped) > 0 {
			log.Warn().Str("ticker", p.Ticker).Strs("fields", clamped).Msg("Negative values clamped to absolute value")
		}
		if p.Ticker == "" {
			log.Warn().Int("row", i+1).Msg("Skipping position without ticker")
			continue
		}
		out = append(out, p)
	}
	return out
}

// Event converts the summary to the published event.
func (s Summary) Event() models.RevaluationEvent {
	return models.RevaluationEvent{
		EventType:    models.EventValuationsUpdated,
		RunID:        s.RunID,
		Positions:    s.Positions,
		Unresolved:   s.Unresolved,
		BaseCurrency: s.BaseCurrency,
		TotalBase:    s.TotalBase,
		ProfitLoss:   s.ProfitLoss,
		Timestamp:    s.StartedAt.Add(s.Duration),
	}
}

func summarize(records []models.ValuationRecord, base string) Summary {
	s := Summary{
		Positions:    len(records),
		BaseCurrency: base,
		TotalBase:    decimal.Zero,
		CostBasis:    decimal.Zero,
		ProfitLoss:   decimal.Zero,
	}
	for _, rec := range records {
		if rec.Unresolved() {
			s.Unresolved++
		}
		s.TotalBase = s.TotalBase.Add(rec.TotalBase)
		s.CostBasis = s.CostBasis.Add(rec.CostBasis)
		s.ProfitLoss = s.ProfitLoss.Add(rec.ProfitLoss)
	}
	return s
}

func display(amount decimal.Decimal, currency string) string {
	if money.GetCurrency(currency) == nil {
		return amount.StringFixed(2) + " " + currency
	}
	return money.NewFromFloat(amount.InexactFloat64(), currency).Display()
}
