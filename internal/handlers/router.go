package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/nextbit-dev/storelift/internal/pipeline"
	"github.com/nextbit-dev/storelift/internal/store"
	"github.com/nextbit-dev/storelift/internal/syncer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wraps the mux router and the run triggers
type Router struct {
	*mux.Router

	runner  *pipeline.Runner
	engine  *syncer.Engine
	exports *store.ExportStore

	// enrichMu and syncMu serialize runs; a trigger while a run is in
	// flight is rejected rather than queued.
	enrichMu sync.Mutex
	syncMu   sync.Mutex
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(runner *pipeline.Runner, engine *syncer.Engine, exports *store.ExportStore) *Router {
	r := &Router{
		Router:  mux.NewRouter(),
		runner:  runner,
		engine:  engine,
		exports: exports,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/runs/enrich", r.triggerEnrich).Methods("POST")
	api.HandleFunc("/runs/sync", r.triggerSync).Methods("POST")
	api.HandleFunc("/exports", r.listExports).Methods("GET")
	api.HandleFunc("/exports/{productId}", r.getExport).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// triggerEnrich runs one full enrichment pass and reports the summary.
func (r *Router) triggerEnrich(w http.ResponseWriter, req *http.Request) {
	if !r.enrichMu.TryLock() {
		respondError(w, http.StatusConflict, "an enrichment run is already in progress")
		return
	}
	defer r.enrichMu.Unlock()

	summary, err := r.runner.Run(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// triggerSync dispatches the eligible export records to the platform.
func (r *Router) triggerSync(w http.ResponseWriter, req *http.Request) {
	if !r.syncMu.TryLock() {
		respondError(w, http.StatusConflict, "a sync run is already in progress")
		return
	}
	defer r.syncMu.Unlock()

	summary, err := r.engine.Run(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"total":    summary.Total,
		"created":  summary.Created,
		"updated":  summary.Updated,
		"failed":   summary.Failed,
		"duration": summary.Duration.String(),
	})
}

// listExports returns all export staging records
func (r *Router) listExports(w http.ResponseWriter, req *http.Request) {
	records, err := r.exports.List(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"exports": records,
	})
}

// getExport returns the staging record for one product
func (r *Router) getExport(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	productID, err := strconv.ParseUint(vars["productId"], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	record, err := r.exports.Get(req.Context(), uint(productID))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrPersistenceUnavailable) {
			status = http.StatusServiceUnavailable
		}
		respondError(w, status, err.Error())
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, "no export record for product")
		return
	}
	respondJSON(w, http.StatusOK, record)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
