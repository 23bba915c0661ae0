package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ambientanki/ambientd/internal/anki"
	"github.com/ambientanki/ambientd/internal/store"
)

// HealthChecker handles health check requests
type HealthChecker struct {
	store *store.Store
	anki  *anki.Client
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(st *store.Store, ankiClient *anki.Client) *HealthChecker {
	return &HealthChecker{store: st, anki: ankiClient}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles the /healthz endpoint. Extended mode also probes
// the store and the AnkiConnect endpoint; an unreachable Anki does not
// make the daemon unhealthy, it is reported as its own check.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if mode == "extended" {
		checks := make(map[string]string)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			response.Status = "unhealthy"
			checks["store"] = "unhealthy: " + err.Error()
		} else {
			checks["store"] = "healthy"
		}

		if h.anki.TestConnection(ctx) {
			checks["anki"] = "connected"
		} else {
			checks["anki"] = "unreachable"
		}

		response.Checks = checks

		statusCode := http.StatusOK
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(response)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
