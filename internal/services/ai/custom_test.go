package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCustomRequiresEndpoint(t *testing.T) {
	t.Parallel()

	p := NewCustomProvider()
	_, err := p.GenerateCards(context.Background(), Request{Prompt: "p"})
	if !errors.Is(err, ErrEndpointNotConfigured) {
		t.Fatalf("expected ErrEndpointNotConfigured, got %v", err)
	}
}

func TestCustomGenerateCards(t *testing.T) {
	t.Parallel()

	var payload map[string]any
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"flashcards": []map[string]string{{"question": "Q", "answer": "A"}},
		})
	}))
	defer srv.Close()

	p := NewCustomProvider()
	cards, err := p.GenerateCards(context.Background(), Request{
		Prompt:      "make cards",
		APIKey:      "token",
		Endpoint:    srv.URL,
		ExtraParams: map[string]any{"temperature": 0.2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 1 || cards[0].Question != "Q" {
		t.Fatalf("unexpected cards: %+v", cards)
	}

	if gotAuth != "Bearer token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if payload["prompt"] != "make cards" {
		t.Errorf("prompt = %v", payload["prompt"])
	}
	if payload["temperature"] != 0.2 {
		t.Errorf("extra param not forwarded: %v", payload["temperature"])
	}
}

func TestCustomBareArrayResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]string{{"front": "F", "back": "B"}})
	}))
	defer srv.Close()

	p := NewCustomProvider()
	cards, err := p.GenerateCards(context.Background(), Request{Prompt: "p", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 1 || cards[0].Front != "F" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}

func TestCustomNonArrayResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	p := NewCustomProvider()
	_, err := p.GenerateCards(context.Background(), Request{Prompt: "p", Endpoint: srv.URL})
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestCustomAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewCustomProvider()
	_, err := p.GenerateCards(context.Background(), Request{Prompt: "p", Endpoint: srv.URL})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}
