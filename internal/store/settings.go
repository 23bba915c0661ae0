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

// Settings returns the persisted settings document, seeding defaults on
// first access.
func (s *Store) Settings(ctx context.Context) (*models.Settings, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM settings WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		defaults := models.DefaultSettings()
		if err := s.SaveSettings(ctx, defaults); err != nil {
			return nil, err
		}
		return defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal([]byte(doc), &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings document: %w", err)
	}
	return &settings, nil
}

// SaveSettings replaces the settings document after validation.
func (s *Store) SaveSettings(ctx context.Context, settings *models.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (id, document, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`,
		string(doc), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// MergeSettings applies a shallow top-level merge of the given partial
// document onto the current settings, validates, persists, and returns
// the result. Unknown keys are rejected by the typed decode.
func (s *Store) MergeSettings(ctx context.Context, partial map[string]json.RawMessage) (*models.Settings, error) {
	current, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	currentDoc, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("failed to encode current settings: %w", err)
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(currentDoc, &merged); err != nil {
		return nil, fmt.Errorf("failed to decode current settings: %w", err)
	}
	for key, value := range partial {
		merged[key] = value
	}

	mergedDoc, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged settings: %w", err)
	}

	var settings models.Settings
	if err := json.Unmarshal(mergedDoc, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode merged settings: %w", err)
	}
	if err := s.SaveSettings(ctx, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}
