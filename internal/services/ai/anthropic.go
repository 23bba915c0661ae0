package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	// DefaultAnthropicModel is used when settings carry no model choice.
	DefaultAnthropicModel = "claude-3-5-haiku-20241022"

	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	anthropicVersion  = "2023-06-01"
	anthropicTimeout  = 60 * time.Second
)

var anthropicModels = []string{
	"claude-3-5-haiku-20241022", "claude-3-5-sonnet-20241022",
	"claude-3-7-sonnet-20250219", "claude-sonnet-4-20250514", "claude-opus-4-20250514",
}

// AnthropicProvider is the message-style vendor. The wire shape differs
// from chat completions: api-key and protocol-version headers, a
// top-level system field, and text at content[0].text.
type AnthropicProvider struct {
	endpoint   string
	httpClient *http.Client
}

// NewAnthropicProvider creates the Anthropic variant.
func NewAnthropicProvider() *AnthropicProvider {
	return &AnthropicProvider{
		endpoint:   anthropicEndpoint,
		httpClient: &http.Client{Timeout: anthropicTimeout},
	}
}

func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

func (p *AnthropicProvider) Models() []string {
	return append([]string(nil), anthropicModels...)
}

func (p *AnthropicProvider) DefaultModel() string { return DefaultAnthropicModel }

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
	System    string             `json:"system"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateCards posts a messages request and parses the first content
// block as a flashcard array.
func (p *AnthropicProvider) GenerateCards(ctx context.Context, req Request) ([]RawCard, error) {
	model := req.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: generateMaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
		System:    systemPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode anthropic request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build anthropic request: %w", err)
	}
	httpReq.Header.Set("x-api-key", req.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := resp.Status
		var errResp anthropicErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error.Message != "" {
			message = errResp.Error.Message
		}
		return nil, &APIError{Provider: ProviderAnthropic, StatusCode: resp.StatusCode, Message: message}
	}

	var decoded anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode anthropic response: %w", err)
	}
	if len(decoded.Content) == 0 {
		return nil, ErrEmptyResult
	}
	return ParseFlashcardArray(decoded.Content[0].Text)
}
