package ai

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/models"
)

type stubCredentials map[string]string

func (s stubCredentials) APIKey(_ context.Context, provider string) (string, error) {
	return s[provider], nil
}

type stubProvider struct {
	name    string
	lastReq Request
	cards   []RawCard
	err     error
}

func (p *stubProvider) Name() string         { return p.name }
func (p *stubProvider) Models() []string     { return nil }
func (p *stubProvider) DefaultModel() string { return "" }

func (p *stubProvider) GenerateCards(_ context.Context, req Request) ([]RawCard, error) {
	p.lastReq = req
	return p.cards, p.err
}

func testClient(creds stubCredentials, stub *stubProvider) *Client {
	c := NewClient(creds, zap.NewNop(), false)
	c.providers[stub.name] = stub
	return c
}

func TestGenerateFlashcards(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{name: ProviderOpenAI, cards: []RawCard{{Question: "Q", Answer: "A"}}}
	c := testClient(stubCredentials{ProviderOpenAI: "sk-test"}, stub)

	page := &models.PageData{Title: "T", URL: "https://example.com"}
	settings := models.DefaultSettings()
	settings.AIModel = "gpt-4o-mini"

	cards, err := c.GenerateFlashcards(context.Background(), page, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 1 || cards[0].Question != "Q" {
		t.Fatalf("unexpected cards: %+v", cards)
	}

	if stub.lastReq.APIKey != "sk-test" {
		t.Errorf("api key = %q", stub.lastReq.APIKey)
	}
	if stub.lastReq.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", stub.lastReq.Model)
	}
	if stub.lastReq.Prompt == "" {
		t.Error("prompt was empty")
	}
}

func TestGenerateFlashcardsMissingCredential(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{name: ProviderOpenAI}
	c := testClient(stubCredentials{}, stub)

	settings := models.DefaultSettings()
	_, err := c.GenerateFlashcards(context.Background(), &models.PageData{}, settings)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestGenerateFlashcardsCustomWithoutKey(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{name: ProviderCustom, cards: []RawCard{{Question: "Q", Answer: "A"}}}
	c := testClient(stubCredentials{}, stub)

	settings := models.DefaultSettings()
	settings.APIProvider = ProviderCustom
	settings.CustomAPIEndpoint = "http://localhost:9999/generate"

	if _, err := c.GenerateFlashcards(context.Background(), &models.PageData{}, settings); err != nil {
		t.Fatalf("custom provider should not require a credential: %v", err)
	}
	if stub.lastReq.Endpoint != settings.CustomAPIEndpoint {
		t.Errorf("endpoint = %q", stub.lastReq.Endpoint)
	}
}

func TestGenerateFlashcardsUnknownProvider(t *testing.T) {
	t.Parallel()

	c := NewClient(stubCredentials{}, zap.NewNop(), false)
	settings := models.DefaultSettings()
	settings.APIProvider = "mystery"

	if _, err := c.GenerateFlashcards(context.Background(), &models.PageData{}, settings); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestGenerateFlashcardsProviderError(t *testing.T) {
	t.Parallel()

	wantErr := &APIError{Provider: ProviderOpenAI, StatusCode: 429, Message: "rate limited"}
	stub := &stubProvider{name: ProviderOpenAI, err: wantErr}
	c := testClient(stubCredentials{ProviderOpenAI: "sk"}, stub)

	_, err := c.GenerateFlashcards(context.Background(), &models.PageData{}, models.DefaultSettings())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 429 {
		t.Fatalf("expected the provider error, got %v", err)
	}
}

func TestEstimateTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcde", 2},
		{"12345678", 2},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.in); got != tt.want {
			t.Errorf("EstimateTokens(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	// 8 chars prompt + 4 chars response = 3 tokens.
	got := EstimateCost("12345678", "abcd", "gpt-4o-mini")
	want := 3 * 0.00015 / 1000
	if got != want {
		t.Errorf("EstimateCost = %g, want %g", got, want)
	}

	// Unknown models use the fallback rate.
	got = EstimateCost("abcd", "", "mystery-model")
	if got != fallbackCostPerToken {
		t.Errorf("fallback cost = %g, want %g", got, fallbackCostPerToken)
	}
}
