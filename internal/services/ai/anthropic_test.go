package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropicGenerateCards(t *testing.T) {
	t.Parallel()

	var got anthropicRequest
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{
				{"text": `[{"question":"Q","answer":"A","tags":["t"]}]`},
			},
		})
	}))
	defer srv.Close()

	p := &AnthropicProvider{endpoint: srv.URL, httpClient: srv.Client()}
	cards, err := p.GenerateCards(context.Background(), Request{
		Prompt: "make cards",
		APIKey: "sk-ant-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 1 || cards[0].Question != "Q" {
		t.Fatalf("unexpected cards: %+v", cards)
	}

	if gotKey != "sk-ant-test" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != anthropicVersion {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if got.Model != DefaultAnthropicModel {
		t.Errorf("model = %q, want default", got.Model)
	}
	if got.System != systemPrompt {
		t.Errorf("system prompt not set")
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" || got.Messages[0].Content != "make cards" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestAnthropicAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid x-api-key"},
		})
	}))
	defer srv.Close()

	p := &AnthropicProvider{endpoint: srv.URL, httpClient: srv.Client()}
	_, err := p.GenerateCards(context.Background(), Request{Prompt: "p", APIKey: "bad"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid x-api-key" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestAnthropicEmptyContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	}))
	defer srv.Close()

	p := &AnthropicProvider{endpoint: srv.URL, httpClient: srv.Client()}
	_, err := p.GenerateCards(context.Background(), Request{Prompt: "p", APIKey: "k"})
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}
