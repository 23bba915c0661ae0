package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/store"
)

// credentialFields are accepted in settings updates but stored in the
// credential table, never in the settings document, and never echoed
// back.
var credentialFields = map[string]string{
	"openaiApiKey":    "openai",
	"anthropicApiKey": "anthropic",
	"customApiKey":    "custom",
}

// SettingsHandler handles settings requests
type SettingsHandler struct {
	store        *store.Store
	modelCatalog map[string][]string
	logger       *zap.Logger
}

// NewSettingsHandler creates a new settings handler. modelCatalog lists
// the supported models per provider for the options surfaces.
func NewSettingsHandler(st *store.Store, modelCatalog map[string][]string, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{store: st, modelCatalog: modelCatalog, logger: logger}
}

// RegisterRoutes registers settings routes on the given router
func (h *SettingsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.GetSettings).Methods("GET")
	r.HandleFunc("", h.UpdateSettings).Methods("PUT")
}

// SettingsResponse is the settings document plus which providers have a
// stored credential.
type SettingsResponse struct {
	Settings            json.RawMessage     `json:"settings"`
	ConfiguredProviders []string            `json:"configuredProviders"`
	ProviderModels      map[string][]string `json:"providerModels,omitempty"`
}

// GetSettings returns the current settings document
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load settings")
		return
	}
	providers, err := h.store.ConfiguredProviders(r.Context())
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load credentials")
		return
	}
	if providers == nil {
		providers = []string{}
	}

	doc, err := json.Marshal(settings)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to encode settings")
		return
	}
	respondJSON(w, http.StatusOK, SettingsResponse{
		Settings:            doc,
		ConfiguredProviders: providers,
		ProviderModels:      h.modelCatalog,
	})
}

// UpdateSettings merges a partial settings document. API key fields are
// routed to the credential store and removed before the merge.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var partial map[string]json.RawMessage
	if !decodeJSONBody(w, r, &partial) {
		return
	}
	if len(partial) == 0 {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Empty settings update")
		return
	}

	for field, provider := range credentialFields {
		raw, ok := partial[field]
		if !ok {
			continue
		}
		var key string
		if err := json.Unmarshal(raw, &key); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", field+" must be a string")
			return
		}
		if err := h.store.SetAPIKey(r.Context(), provider, strings.TrimSpace(key)); err != nil {
			respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to store credential")
			return
		}
		h.logger.Info("api_key_updated", zap.String("provider", provider), zap.Bool("removed", key == ""))
		delete(partial, field)
	}

	if len(partial) == 0 {
		// Credential-only update.
		h.GetSettings(w, r)
		return
	}

	settings, err := h.store.MergeSettings(r.Context(), partial)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Invalid Settings", err.Error())
		return
	}
	h.logger.Info("settings_updated")

	respondJSON(w, http.StatusOK, settings)
}
