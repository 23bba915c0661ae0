// Package ai generates flashcards from page content through one of a
// closed set of LLM provider variants.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/models"
)

// CredentialSource resolves the stored API key for a provider, ""
// when none is configured. The store satisfies this.
type CredentialSource interface {
	APIKey(ctx context.Context, provider string) (string, error)
}

// Client dispatches generation to the provider selected in settings and
// normalizes the result. A single failed attempt propagates
// immediately; retry policy belongs to callers.
type Client struct {
	credentials CredentialSource
	providers   map[string]Provider
	logger      *zap.Logger
	debugMode   bool
}

// NewClient creates a client with the full provider set registered.
func NewClient(credentials CredentialSource, logger *zap.Logger, debugMode bool) *Client {
	c := &Client{
		credentials: credentials,
		providers:   make(map[string]Provider),
		logger:      logger,
		debugMode:   debugMode,
	}
	for _, p := range []Provider{NewOpenAIProvider(), NewAnthropicProvider(), NewCustomProvider()} {
		c.providers[p.Name()] = p
	}
	return c
}

// Provider returns the named provider variant.
func (c *Client) Provider(name string) (Provider, bool) {
	p, ok := c.providers[name]
	return p, ok
}

// ProviderModels lists the model catalog per provider, for the options
// surfaces.
func (c *Client) ProviderModels() map[string][]string {
	catalog := make(map[string][]string, len(c.providers))
	for name, p := range c.providers {
		catalog[name] = p.Models()
	}
	return catalog
}

// GenerateFlashcards builds the prompt from page data, calls the
// configured provider, and returns normalized flashcards.
func (c *Client) GenerateFlashcards(ctx context.Context, page *models.PageData, settings *models.Settings) ([]models.Flashcard, error) {
	providerName := settings.APIProvider
	if providerName == "" {
		providerName = ProviderOpenAI
	}
	provider, ok := c.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("unknown AI provider: %s", providerName)
	}

	apiKey, err := c.credentials.APIKey(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credential: %w", err)
	}
	// The custom variant may legitimately run against an unauthenticated
	// local endpoint.
	if apiKey == "" && providerName != ProviderCustom {
		return nil, fmt.Errorf("%w for %s", ErrMissingCredential, providerName)
	}

	model := settings.AIModel
	if model == "" {
		model = provider.DefaultModel()
	}

	prompt := BuildPrompt(page, settings)
	req := Request{
		Prompt:      prompt,
		Model:       model,
		APIKey:      apiKey,
		Endpoint:    settings.CustomAPIEndpoint,
		ExtraParams: settings.CustomAPIParams,
	}

	if c.debugMode {
		c.logger.Debug("llm_api_request",
			zap.String("provider", providerName),
			zap.String("model", req.Model),
			zap.Int("prompt_length", len(prompt)),
			zap.Int("prompt_tokens_estimate", EstimateTokens(prompt)),
			zap.String("url", page.URL),
		)
	}

	start := time.Now()
	raw, err := provider.GenerateCards(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if c.debugMode {
			c.logger.Debug("llm_api_error",
				zap.String("provider", providerName),
				zap.String("model", req.Model),
				zap.Error(err),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		return nil, err
	}

	cards := Normalize(raw, page, settings)

	if c.debugMode {
		response, _ := json.Marshal(raw)
		c.logger.Debug("llm_api_response",
			zap.String("provider", providerName),
			zap.String("model", req.Model),
			zap.Int("card_count", len(cards)),
			zap.Int64("latency_ms", latency.Milliseconds()),
			zap.Float64("cost_estimate_usd", EstimateCost(prompt, string(response), req.Model)),
		)
	}
	return cards, nil
}
