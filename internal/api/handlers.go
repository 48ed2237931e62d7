package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/trogers1052/portfolio-valuation/internal/runner"
)

// Revaluations is the part of the runner the HTTP surface uses
type Revaluations interface {
	Run(ctx context.Context, reason string) (*runner.Summary, error)
	Latest() (*runner.Snapshot, bool)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	runs Revaluations
	log  zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(runs Revaluations, log zerolog.Logger) *Handler {
	return &Handler{
		runs: runs,
		log:  log.With().Str("component", "api").Logger(),
	}
}

// GetValuations handles GET /valuations
func (h *Handler) GetValuations(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.runs.Latest()
	if !ok {
		http.Error(w, "no valuation run yet", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// GetValuation handles GET /valuations/{ticker}
func (h *Handler) GetValuation(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	snapshot, ok := h.runs.Latest()
	if !ok {
		http.Error(w, "no valuation run yet", http.StatusNotFound)
		return
	}

	for _, record := range snapshot.Records {
		if strings.EqualFold(record.Ticker, ticker) {
			respondJSON(w, http.StatusOK, record)
			return
		}
	}

	http.Error(w, "ticker not found", http.StatusNotFound)
}

// Revalue handles POST /revaluations
func (h *Handler) Revalue(w http.ResponseWriter, r *http.Request) {
	summary, err := h.runs.Run(r.Context(), "api")
	if errors.Is(err, runner.ErrRunInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("On-demand revaluation failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"status": "healthy"}
	if snapshot, ok := h.runs.Latest(); ok {
		status["last_run_id"] = snapshot.Summary.RunID
		status["last_run_at"] = snapshot.Summary.StartedAt
	}
	respondJSON(w, http.StatusOK, status)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
