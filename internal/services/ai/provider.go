package ai

import (
	"context"
)

// Provider names form a closed set; settings validation rejects
// anything else.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderCustom    = "custom"
)

// RawCard is a flashcard as the model emitted it, before normalization.
// Providers differ on field names, so both alias pairs are accepted.
type RawCard struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Front    string   `json:"front"`
	Back     string   `json:"back"`
	Tags     []string `json:"tags"`
}

// Request carries everything a provider call needs. APIKey is resolved
// from the credential store per call; Endpoint and ExtraParams apply to
// the custom variant only.
type Request struct {
	Prompt      string
	Model       string
	APIKey      string
	Endpoint    string
	ExtraParams map[string]any
}

// Provider is one LLM backend variant. GenerateCards performs a single
// attempt; failures propagate immediately with no retry.
type Provider interface {
	// Name returns the provider tag used in settings.
	Name() string
	// Models lists the supported model identifiers. Informational; the
	// configured model is used without call-time enforcement.
	Models() []string
	// DefaultModel is used when settings carry no model choice.
	DefaultModel() string
	// GenerateCards sends the prompt and returns the parsed raw cards.
	GenerateCards(ctx context.Context, req Request) ([]RawCard, error)
}
