package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Valuation routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/valuations", handler.GetValuations).Methods("GET")
	api.HandleFunc("/valuations/{ticker}", handler.GetValuation).Methods("GET")
	api.HandleFunc("/revaluations", handler.Revalue).Methods("POST")

	return r
}
