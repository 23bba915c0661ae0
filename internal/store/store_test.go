package store

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ambientanki/ambientd/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSettings_SeedsDefaults(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	settings, err := s.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if settings.APIProvider != "openai" {
		t.Errorf("default provider = %q, want openai", settings.APIProvider)
	}
	if settings.AnkiDeck != "Ambient Anki" {
		t.Errorf("default deck = %q", settings.AnkiDeck)
	}
	if settings.FlashcardSettings.MaxPerPage != 5 {
		t.Errorf("default maxPerPage = %d, want 5", settings.FlashcardSettings.MaxPerPage)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	settings := models.DefaultSettings()
	settings.APIProvider = "anthropic"
	settings.AnkiDeck = "Research"
	settings.AutoCapture.Enabled = true
	if err := s.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	loaded, err := s.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if loaded.APIProvider != "anthropic" || loaded.AnkiDeck != "Research" || !loaded.AutoCapture.Enabled {
		t.Errorf("loaded settings do not match saved: %+v", loaded)
	}
}

func TestSettings_RejectsInvalid(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	settings := models.DefaultSettings()
	settings.APIProvider = "not-a-provider"
	if err := s.SaveSettings(context.Background(), settings); err == nil {
		t.Error("expected validation error for unknown provider")
	}
}

func TestMergeSettings_PartialUpdate(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	partial := map[string]json.RawMessage{
		"ankiDeck": json.RawMessage(`"Biology"`),
	}
	merged, err := s.MergeSettings(ctx, partial)
	if err != nil {
		t.Fatalf("MergeSettings: %v", err)
	}
	if merged.AnkiDeck != "Biology" {
		t.Errorf("merged deck = %q, want Biology", merged.AnkiDeck)
	}
	// Untouched fields survive the merge.
	if merged.APIProvider != "openai" {
		t.Errorf("merged provider = %q, want openai", merged.APIProvider)
	}
}

func TestAPIKey_RoundTripAndRemoval(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SetAPIKey(ctx, "openai", "sk-test-123"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	key, err := s.APIKey(ctx, "openai")
	if err != nil {
		t.Fatalf("APIKey: %v", err)
	}
	if key != "sk-test-123" {
		t.Errorf("key = %q, want sk-test-123", key)
	}

	if key, _ := s.APIKey(ctx, "anthropic"); key != "" {
		t.Errorf("unset provider returned %q", key)
	}

	if err := s.SetAPIKey(ctx, "openai", ""); err != nil {
		t.Fatalf("SetAPIKey remove: %v", err)
	}
	if key, _ := s.APIKey(ctx, "openai"); key != "" {
		t.Errorf("removed key still present: %q", key)
	}
}

func TestHistory_AppendAndRead(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := &models.CaptureHistoryEntry{
			ID:             fmt.Sprintf("entry-%d", i),
			URL:            fmt.Sprintf("https://example.com/%d", i),
			Title:          fmt.Sprintf("Page %d", i),
			CapturedAt:     time.Now().Add(time.Duration(i) * time.Second),
			FlashcardCount: i + 1,
			Submission: &models.SubmissionResult{
				Total: i + 1, Success: i + 1,
			},
		}
		if err := s.AddHistory(ctx, entry); err != nil {
			t.Fatalf("AddHistory: %v", err)
		}
	}

	entries, err := s.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	// Oldest first, newest last.
	if entries[0].ID != "entry-0" || entries[2].ID != "entry-2" {
		t.Errorf("history order wrong: %s .. %s", entries[0].ID, entries[2].ID)
	}
	if entries[2].Submission == nil || entries[2].Submission.Total != 3 {
		t.Errorf("submission result not persisted: %+v", entries[2].Submission)
	}
}

func TestHistory_CapEvictsOldestFirst(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < models.MaxHistoryEntries+1; i++ {
		entry := &models.CaptureHistoryEntry{
			ID:         fmt.Sprintf("entry-%d", i),
			URL:        "https://example.com",
			CapturedAt: time.UnixMilli(int64(i)),
		}
		if err := s.AddHistory(ctx, entry); err != nil {
			t.Fatalf("AddHistory %d: %v", i, err)
		}
	}

	count, err := s.HistoryCount(ctx)
	if err != nil {
		t.Fatalf("HistoryCount: %v", err)
	}
	if count != models.MaxHistoryEntries {
		t.Errorf("count = %d, want %d", count, models.MaxHistoryEntries)
	}

	entries, err := s.History(ctx, models.MaxHistoryEntries)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	// entry-0 was evicted; newest entry is last.
	if entries[0].ID != "entry-1" {
		t.Errorf("oldest surviving entry = %s, want entry-1", entries[0].ID)
	}
	if entries[len(entries)-1].ID != fmt.Sprintf("entry-%d", models.MaxHistoryEntries) {
		t.Errorf("newest entry = %s", entries[len(entries)-1].ID)
	}
}

func TestRecentCapture_WindowFilter(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	old := &models.CaptureHistoryEntry{
		ID: "old", URL: "https://example.com/page", CapturedAt: now.Add(-2 * time.Hour),
	}
	recent := &models.CaptureHistoryEntry{
		ID: "recent", URL: "https://example.com/page", CapturedAt: now.Add(-10 * time.Minute),
	}
	if err := s.AddHistory(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.AddHistory(ctx, recent); err != nil {
		t.Fatal(err)
	}

	got, err := s.RecentCapture(ctx, "https://example.com/page", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("RecentCapture: %v", err)
	}
	if got == nil || got.ID != "recent" {
		t.Errorf("RecentCapture = %+v, want the recent entry", got)
	}

	none, err := s.RecentCapture(ctx, "https://example.com/other", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("RecentCapture: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil for uncaptured url, got %+v", none)
	}
}

func TestClearHistory(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	entry := &models.CaptureHistoryEntry{ID: "x", URL: "https://example.com", CapturedAt: time.Now()}
	if err := s.AddHistory(ctx, entry); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	count, _ := s.HistoryCount(ctx)
	if count != 0 {
		t.Errorf("count after clear = %d", count)
	}
}
