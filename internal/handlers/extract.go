package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/extract"
	"github.com/ambientanki/ambientd/internal/models"
)

// ExtractHandler handles content extraction requests
type ExtractHandler struct {
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewExtractHandler creates a new extract handler
func NewExtractHandler(extractor *extract.Extractor, logger *zap.Logger) *ExtractHandler {
	return &ExtractHandler{extractor: extractor, logger: logger}
}

// RegisterRoutes registers extraction routes on the given router
func (h *ExtractHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.Extract).Methods("POST")
	r.HandleFunc("/check", h.CheckSuitability).Methods("POST")
}

// ExtractRequest represents an extraction request
type ExtractRequest struct {
	URL  string `json:"url" validate:"required,url"`
	HTML string `json:"html,omitempty"`
}

// Extract returns normalized page data without generating flashcards
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "url is required")
		return
	}

	var page *models.PageData
	var err error
	if req.HTML != "" {
		page, err = h.extractor.ExtractHTML(req.HTML, req.URL)
	} else {
		page, err = h.extractor.ExtractURL(r.Context(), req.URL)
	}
	if err != nil {
		h.logger.Warn("extraction_failed", zap.String("url", req.URL), zap.Error(err))
		respondJSONError(w, http.StatusUnprocessableEntity, "Extraction Failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// CheckSuitability reports whether a page is worth capturing
func (h *ExtractHandler) CheckSuitability(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "url is required")
		return
	}

	var page *models.PageData
	var err error
	if req.HTML != "" {
		page, err = h.extractor.ExtractHTML(req.HTML, req.URL)
	} else {
		page, err = h.extractor.ExtractURL(r.Context(), req.URL)
	}
	if err != nil {
		respondJSON(w, http.StatusOK, extract.SuitabilityResult{Suitable: false, Reason: "insufficient_content"})
		return
	}

	respondJSON(w, http.StatusOK, extract.CheckSuitability(req.URL, page.Content))
}
