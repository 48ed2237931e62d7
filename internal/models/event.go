package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventValuationsUpdated    = "VALUATIONS_UPDATED"
	EventRevaluationRequested = "REVALUATION_REQUESTED"
	EventWalletUpdated        = "WALLET_UPDATED"
)

// RevaluationEvent is published after a snapshot has been replaced.
type RevaluationEvent struct {
	EventType    string          `json:"event_type"`
	RunID        string          `json:"run_id"`
	Positions    int             `json:"positions"`
	Unresolved   int             `json:"unresolved"`
	BaseCurrency string          `json:"base_currency"`
	TotalBase    decimal.Decimal `json:"total_base"`
	ProfitLoss   decimal.Decimal `json:"profit_loss"`
	Timestamp    time.Time       `json:"timestamp"`
}

// TriggerEvent asks the service to run a revaluation.
type TriggerEvent struct {
	EventType string `json:"event_type"`
	Source    string `json:"source,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
