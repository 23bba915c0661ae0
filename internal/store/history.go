package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ambientanki/ambientd/internal/models"
)

// DefaultHistoryLimit bounds how many entries a read returns when the
// caller does not ask for more.
const DefaultHistoryLimit = 100

// AddHistory appends a capture record and evicts the oldest entries
// beyond the cap.
func (s *Store) AddHistory(ctx context.Context, entry *models.CaptureHistoryEntry) error {
	var submissionJSON sql.NullString
	if entry.Submission != nil {
		data, err := json.Marshal(entry.Submission)
		if err != nil {
			return fmt.Errorf("failed to encode submission result: %w", err)
		}
		submissionJSON = sql.NullString{String: string(data), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO capture_history (id, url, title, captured_at, flashcard_count, submission_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.URL, entry.Title, entry.CapturedAt.UnixMilli(), entry.FlashcardCount, submissionJSON)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}

	// FIFO eviction past the cap.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM capture_history
		WHERE seq NOT IN (SELECT seq FROM capture_history ORDER BY seq DESC LIMIT ?)`,
		models.MaxHistoryEntries)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}

	return tx.Commit()
}

// History returns up to limit entries, oldest first (newest last), the
// order the history surfaces expect.
func (s *Store) History(ctx context.Context, limit int) ([]models.CaptureHistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, title, captured_at, flashcard_count, submission_json
		FROM (
			SELECT * FROM capture_history ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []models.CaptureHistoryEntry
	for rows.Next() {
		entry, err := scanHistoryRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// HistoryCount reports the number of stored entries.
func (s *Store) HistoryCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM capture_history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// RecentCapture returns the most recent capture of the URL at or after
// the cutoff, or nil when none exists. This is the weaker, URL-keyed
// half of duplicate suppression; Anki's per-deck check is independent.
func (s *Store) RecentCapture(ctx context.Context, url string, since time.Time) (*models.CaptureHistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, captured_at, flashcard_count, submission_json
		FROM capture_history
		WHERE url = ? AND captured_at >= ?
		ORDER BY captured_at DESC LIMIT 1`,
		url, since.UnixMilli())

	entry, err := scanHistoryRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ClearHistory removes all capture records.
func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM capture_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistoryRow(row rowScanner) (*models.CaptureHistoryEntry, error) {
	var entry models.CaptureHistoryEntry
	var title sql.NullString
	var capturedAt int64
	var submissionJSON sql.NullString

	err := row.Scan(&entry.ID, &entry.URL, &title, &capturedAt, &entry.FlashcardCount, &submissionJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan history row: %w", err)
	}

	entry.Title = title.String
	entry.CapturedAt = time.UnixMilli(capturedAt)
	if submissionJSON.Valid {
		var submission models.SubmissionResult
		if err := json.Unmarshal([]byte(submissionJSON.String), &submission); err != nil {
			return nil, fmt.Errorf("failed to decode submission result: %w", err)
		}
		entry.Submission = &submission
	}
	return &entry, nil
}
