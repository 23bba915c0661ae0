package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/capture"
)

// TabsHandler receives tab lifecycle events from the extension and
// feeds them to the auto-capture machinery
type TabsHandler struct {
	auto   *capture.AutoCapturer
	logger *zap.Logger
}

// NewTabsHandler creates a new tabs handler
func NewTabsHandler(auto *capture.AutoCapturer, logger *zap.Logger) *TabsHandler {
	return &TabsHandler{auto: auto, logger: logger}
}

// RegisterRoutes registers tab event routes on the given router
func (h *TabsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/activated", h.Activated).Methods("POST")
	r.HandleFunc("/closed", h.Closed).Methods("POST")
	r.HandleFunc("/ready", h.Ready).Methods("POST")
}

// TabEvent represents one tab lifecycle event
type TabEvent struct {
	TabID int    `json:"tabId" validate:"required"`
	URL   string `json:"url,omitempty"`
}

// Activated starts dwell monitoring for the tab
func (h *TabsHandler) Activated(w http.ResponseWriter, r *http.Request) {
	var event TabEvent
	if !decodeJSONBody(w, r, &event) {
		return
	}
	if event.URL == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "url is required")
		return
	}

	if err := h.auto.TabActivated(r.Context(), event.TabID, event.URL); err != nil {
		h.logger.Error("tab_event_failed", zap.Int("tab_id", event.TabID), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to process tab event")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"monitoring": true})
}

// Closed cancels monitoring for the tab
func (h *TabsHandler) Closed(w http.ResponseWriter, r *http.Request) {
	var event TabEvent
	if !decodeJSONBody(w, r, &event) {
		return
	}
	h.auto.TabClosed(event.TabID)
	respondJSON(w, http.StatusOK, map[string]bool{"monitoring": false})
}

// Ready acknowledges a content script announcing itself. The daemon
// keeps no per-tab script state, but the extension expects the ack.
func (h *TabsHandler) Ready(w http.ResponseWriter, r *http.Request) {
	var event TabEvent
	if !decodeJSONBody(w, r, &event) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"acknowledged": true})
}
