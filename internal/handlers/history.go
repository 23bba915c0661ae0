package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/models"
	"github.com/ambientanki/ambientd/internal/store"
)

// HistoryHandler handles capture history requests
type HistoryHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(st *store.Store, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{store: st, logger: logger}
}

// RegisterRoutes registers history routes on the given router
func (h *HistoryHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetHistory).Methods("GET")
	r.HandleFunc("", h.ClearHistory).Methods("DELETE")
}

// HistoryResponse represents the capture history listing
type HistoryResponse struct {
	Entries []models.CaptureHistoryEntry `json:"entries"`
	Total   int                          `json:"total"`
}

// GetHistory lists capture history, oldest first
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "limit must be a positive integer")
			return
		}
		if parsed > models.MaxHistoryEntries {
			parsed = models.MaxHistoryEntries
		}
		limit = parsed
	}

	entries, err := h.store.History(r.Context(), limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load history")
		return
	}
	if entries == nil {
		entries = []models.CaptureHistoryEntry{}
	}

	total, err := h.store.HistoryCount(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to count history")
		return
	}

	respondJSON(w, http.StatusOK, HistoryResponse{Entries: entries, Total: total})
}

// ClearHistory deletes all capture history
func (h *HistoryHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearHistory(r.Context()); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to clear history")
		return
	}
	h.logger.Info("history_cleared")
	respondJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}
