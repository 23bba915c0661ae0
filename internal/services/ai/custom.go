package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const customTimeout = 60 * time.Second

// CustomProvider posts the prompt to a user-configured endpoint whose
// body shape is agreed out of band. The response may carry the cards in
// a `flashcards` field or be the array itself.
type CustomProvider struct {
	httpClient *http.Client
}

// NewCustomProvider creates the custom-endpoint variant.
func NewCustomProvider() *CustomProvider {
	return &CustomProvider{
		httpClient: &http.Client{Timeout: customTimeout},
	}
}

func (p *CustomProvider) Name() string { return ProviderCustom }

// Models is empty: the endpoint owner decides what runs behind it.
func (p *CustomProvider) Models() []string { return nil }

func (p *CustomProvider) DefaultModel() string { return "" }

// GenerateCards posts {prompt, ...extra params} with bearer auth when a
// key is configured.
func (p *CustomProvider) GenerateCards(ctx context.Context, req Request) ([]RawCard, error) {
	if req.Endpoint == "" {
		return nil, ErrEndpointNotConfigured
	}

	payload := map[string]any{"prompt": req.Prompt}
	for key, value := range req.ExtraParams {
		payload[key] = value
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode custom request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build custom request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("custom API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Provider: ProviderCustom, StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var envelope struct {
		Flashcards json.RawMessage `json:"flashcards"`
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode custom response: %w", err)
	}

	cardsJSON := raw
	if json.Unmarshal(raw, &envelope) == nil && len(envelope.Flashcards) > 0 {
		cardsJSON = envelope.Flashcards
	}

	var cards []RawCard
	if err := json.Unmarshal(cardsJSON, &cards); err != nil {
		return nil, ErrEmptyResult
	}
	return cards, nil
}
