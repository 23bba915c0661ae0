package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/anki"
	"github.com/ambientanki/ambientd/internal/models"
)

// AnkiHandler handles requests proxied to the local AnkiConnect
// endpoint
type AnkiHandler struct {
	client *anki.Client
	logger *zap.Logger
}

// NewAnkiHandler creates a new anki handler
func NewAnkiHandler(client *anki.Client, logger *zap.Logger) *AnkiHandler {
	return &AnkiHandler{client: client, logger: logger}
}

// RegisterRoutes registers anki routes on the given router
func (h *AnkiHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/test", h.TestConnection).Methods("POST")
	r.HandleFunc("/decks", h.ListDecks).Methods("GET")
	r.HandleFunc("/stats", h.DeckStats).Methods("GET")
	r.HandleFunc("/notes", h.AddNotes).Methods("POST")
	r.HandleFunc("/sync", h.Sync).Methods("POST")
}

// TestConnection reports whether Anki is reachable
func (h *AnkiHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	connected := h.client.TestConnection(r.Context())
	respondJSON(w, http.StatusOK, map[string]bool{"connected": connected})
}

// ListDecks returns all deck names
func (h *AnkiHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.client.DeckNames(r.Context())
	if err != nil {
		respondAnkiError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, decks)
}

// DeckStats returns note counts per deck
func (h *AnkiHandler) DeckStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.client.DeckStats(r.Context()))
}

// AddNotesRequest represents a direct flashcard submission
type AddNotesRequest struct {
	Flashcards []models.Flashcard `json:"flashcards" validate:"required,min=1"`
	Deck       string             `json:"deck" validate:"required"`
}

// AddNotes submits already-generated flashcards to a deck
func (h *AnkiHandler) AddNotes(w http.ResponseWriter, r *http.Request) {
	var req AddNotesRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if len(req.Flashcards) == 0 || req.Deck == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "flashcards and deck are required")
		return
	}

	result, err := h.client.AddFlashcards(r.Context(), req.Flashcards, req.Deck)
	if err != nil {
		respondAnkiError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Sync triggers an AnkiWeb sync
func (h *AnkiHandler) Sync(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Sync(r.Context()); err != nil {
		respondAnkiError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"synced": true})
}

// respondAnkiError maps anki client failures onto HTTP statuses
func respondAnkiError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var connErr *anki.ConnectionError
	if errors.As(err, &connErr) {
		respondJSONError(w, http.StatusBadGateway, "Anki Unreachable", err.Error())
		return
	}
	logger.Error("anki_request_failed", zap.Error(err))
	respondJSONError(w, http.StatusBadGateway, "Anki Error", err.Error())
}
