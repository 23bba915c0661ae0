package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/models"
)

func TestGetHistoryEmpty(t *testing.T) {
	t.Parallel()

	h := NewHistoryHandler(newTestStore(t), zap.NewNop())
	rec := httptest.NewRecorder()
	h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)

	var resp HistoryResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("bad data payload: %v", err)
	}
	if resp.Total != 0 || len(resp.Entries) != 0 {
		t.Fatalf("expected empty history, got %+v", resp)
	}
	if resp.Entries == nil {
		t.Fatal("entries should serialize as an empty list")
	}
}

func TestGetHistoryWithEntries(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	for i, url := range []string{"https://a.example.com", "https://b.example.com"} {
		entry := &models.CaptureHistoryEntry{
			ID:             "id-" + url,
			URL:            url,
			Title:          "Title",
			CapturedAt:     time.Now().Add(time.Duration(i) * time.Second),
			FlashcardCount: 3,
		}
		if err := st.AddHistory(ctx, entry); err != nil {
			t.Fatalf("failed to seed history: %v", err)
		}
	}

	h := NewHistoryHandler(st, zap.NewNop())
	rec := httptest.NewRecorder()
	h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=10", nil))

	env := decodeEnvelope(t, rec)
	var resp HistoryResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("bad data payload: %v", err)
	}
	if resp.Total != 2 || len(resp.Entries) != 2 {
		t.Fatalf("unexpected listing: %+v", resp)
	}
	if resp.Entries[0].URL != "https://a.example.com" {
		t.Errorf("expected oldest first, got %q", resp.Entries[0].URL)
	}
}

func TestGetHistoryRejectsBadLimit(t *testing.T) {
	t.Parallel()

	h := NewHistoryHandler(newTestStore(t), zap.NewNop())
	rec := httptest.NewRecorder()
	h.GetHistory(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=zero", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestClearHistory(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	ctx := context.Background()
	entry := &models.CaptureHistoryEntry{ID: "x", URL: "https://a.example.com", CapturedAt: time.Now()}
	if err := st.AddHistory(ctx, entry); err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}

	h := NewHistoryHandler(st, zap.NewNop())
	rec := httptest.NewRecorder()
	h.ClearHistory(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	count, err := st.HistoryCount(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("history not cleared, %d entries remain", count)
	}
}
