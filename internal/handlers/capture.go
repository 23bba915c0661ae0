package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/capture"
	"github.com/ambientanki/ambientd/internal/services/ai"
)

// CaptureHandler handles capture requests
type CaptureHandler struct {
	service *capture.Service
	logger  *zap.Logger
}

// NewCaptureHandler creates a new capture handler
func NewCaptureHandler(service *capture.Service, logger *zap.Logger) *CaptureHandler {
	return &CaptureHandler{service: service, logger: logger}
}

// RegisterRoutes registers capture routes on the given router
func (h *CaptureHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.Capture).Methods("POST")
}

// CaptureRequest represents a capture request. HTML is optional; when
// present the daemon extracts from the posted document instead of
// fetching the URL itself.
type CaptureRequest struct {
	URL   string `json:"url" validate:"required,url"`
	HTML  string `json:"html,omitempty"`
	Force bool   `json:"force,omitempty"`
	Auto  bool   `json:"auto,omitempty"`
	TabID int    `json:"tabId,omitempty"`
}

// Capture runs the full capture pipeline for one page
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "url is required")
		return
	}

	result, err := h.service.Capture(r.Context(), capture.Request{
		URL:   req.URL,
		HTML:  req.HTML,
		Force: req.Force,
		Auto:  req.Auto,
		TabID: req.TabID,
	})
	if err != nil {
		status := http.StatusInternalServerError
		errorType := "Capture Failed"
		switch {
		case ai.IsConfigurationError(err):
			status = http.StatusPreconditionFailed
			errorType = "Not Configured"
		case errors.Is(err, capture.ErrNoFlashcards):
			status = http.StatusUnprocessableEntity
		}
		h.logger.Error("capture_failed", zap.String("url", req.URL), zap.Error(err))
		respondJSONError(w, status, errorType, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}
