package store

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// API keys are stored base64-encoded. This is reversible obfuscation,
// not encryption; the store API isolates the encoding so a real secret
// backend can replace it without touching callers.

// SetAPIKey stores the credential for a provider. An empty key removes
// the stored credential.
func (s *Store) SetAPIKey(ctx context.Context, provider, key string) error {
	if key == "" {
		_, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE provider = ?`, provider)
		if err != nil {
			return fmt.Errorf("failed to remove credential: %w", err)
		}
		return nil
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(key))
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (provider, encoded_key, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET encoded_key = excluded.encoded_key, updated_at = excluded.updated_at`,
		provider, encoded, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// APIKey returns the stored credential for a provider, or "" when none
// is configured.
func (s *Store) APIKey(ctx context.Context, provider string) (string, error) {
	var encoded string
	err := s.db.QueryRowContext(ctx, `SELECT encoded_key FROM credentials WHERE provider = ?`, provider).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode credential: %w", err)
	}
	return string(key), nil
}

// ConfiguredProviders lists providers that have a stored credential.
func (s *Store) ConfiguredProviders(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT provider FROM credentials ORDER BY provider`)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}
	defer rows.Close()

	var providers []string
	for rows.Next() {
		var provider string
		if err := rows.Scan(&provider); err != nil {
			return nil, fmt.Errorf("failed to scan credential row: %w", err)
		}
		providers = append(providers, provider)
	}
	return providers, rows.Err()
}
