// Package anki is a client for the AnkiConnect HTTP API exposed by a
// locally running Anki instance.
package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is where the AnkiConnect addon listens.
	DefaultEndpoint = "http://localhost:8765"
	// apiVersion is the AnkiConnect protocol version sent with every
	// request and the minimum accepted from the peer.
	apiVersion = 6

	requestTimeout = 30 * time.Second
)

// Client speaks the AnkiConnect envelope: every call posts
// {action, version, params} and receives {result, error}.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client against the given endpoint, or
// DefaultEndpoint when empty.
func NewClient(endpoint string, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

type invokeRequest struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params"`
}

type invokeResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// invoke performs one AnkiConnect action and unmarshals the result into
// out when out is non-nil.
func (c *Client) invoke(ctx context.Context, action string, params any, out any) error {
	if params == nil {
		params = struct{}{}
	}
	body, err := json.Marshal(invokeRequest{Action: action, Version: apiVersion, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("AnkiConnect HTTP error: %d", resp.StatusCode)
	}

	var envelope invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", action, err)
	}
	if envelope.Error != nil && *envelope.Error != "" {
		return &RemoteError{Action: action, Message: *envelope.Error}
	}
	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", action, err)
		}
	}
	return nil
}

// TestConnection reports whether AnkiConnect is reachable and speaks at
// least the required protocol version. Errors collapse to false.
func (c *Client) TestConnection(ctx context.Context) bool {
	var version int
	if err := c.invoke(ctx, "version", nil, &version); err != nil {
		c.logger.Debug("anki_connection_test_failed", zap.Error(err))
		return false
	}
	return version >= apiVersion
}

// DeckNames lists all deck names.
func (c *Client) DeckNames(ctx context.Context) ([]string, error) {
	var decks []string
	if err := c.invoke(ctx, "deckNames", nil, &decks); err != nil {
		return nil, err
	}
	return decks, nil
}

// CreateDeck creates a deck, returning its id.
func (c *Client) CreateDeck(ctx context.Context, name string) (int64, error) {
	var id int64
	if err := c.invoke(ctx, "createDeck", map[string]string{"deck": name}, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// EnsureDeck creates the deck when it does not already exist.
func (c *Client) EnsureDeck(ctx context.Context, name string) error {
	decks, err := c.DeckNames(ctx)
	if err != nil {
		return err
	}
	for _, deck := range decks {
		if deck == name {
			return nil
		}
	}
	if _, err := c.CreateDeck(ctx, name); err != nil {
		return err
	}
	c.logger.Info("anki_deck_created", zap.String("deck", name))
	return nil
}

// ModelNames lists available note models.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	var modelNames []string
	if err := c.invoke(ctx, "modelNames", nil, &modelNames); err != nil {
		return nil, err
	}
	return modelNames, nil
}

// FindNotes returns note ids matching an Anki search query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	var ids []int64
	if err := c.invoke(ctx, "findNotes", map[string]string{"query": query}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// NoteInfo is the subset of notesInfo output the daemon uses.
type NoteInfo struct {
	NoteID int64                `json:"noteId"`
	Model  string               `json:"modelName"`
	Tags   []string             `json:"tags"`
	Fields map[string]NoteField `json:"fields"`
}

// NoteField is one field value with its display order.
type NoteField struct {
	Value string `json:"value"`
	Order int    `json:"order"`
}

// NotesInfo fetches full note details for the given ids.
func (c *Client) NotesInfo(ctx context.Context, noteIDs []int64) ([]NoteInfo, error) {
	var info []NoteInfo
	if err := c.invoke(ctx, "notesInfo", map[string]any{"notes": noteIDs}, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// UpdateNoteFields replaces the fields of an existing note.
func (c *Client) UpdateNoteFields(ctx context.Context, noteID int64, fields map[string]string) error {
	params := map[string]any{
		"note": map[string]any{"id": noteID, "fields": fields},
	}
	return c.invoke(ctx, "updateNoteFields", params, nil)
}

// DeleteNotes removes notes by id.
func (c *Client) DeleteNotes(ctx context.Context, noteIDs []int64) error {
	return c.invoke(ctx, "deleteNotes", map[string]any{"notes": noteIDs}, nil)
}

// Sync triggers an AnkiWeb sync.
func (c *Client) Sync(ctx context.Context) error {
	return c.invoke(ctx, "sync", nil, nil)
}

// DeckConfig fetches the raw configuration document of a deck.
func (c *Client) DeckConfig(ctx context.Context, deck string) (json.RawMessage, error) {
	var cfg json.RawMessage
	if err := c.invoke(ctx, "getDeckConfig", map[string]string{"deck": deck}, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveDeckConfig writes back a configuration document.
func (c *Client) SaveDeckConfig(ctx context.Context, config json.RawMessage) error {
	return c.invoke(ctx, "saveDeckConfig", map[string]any{"config": config}, nil)
}

// IsDuplicate reports whether a note with the given front text already
// exists in the deck. Lookup failures collapse to false.
func (c *Client) IsDuplicate(ctx context.Context, question, deck string) bool {
	escaped := strings.ReplaceAll(question, `"`, `\"`)
	query := fmt.Sprintf(`deck:"%s" "front:%s"`, deck, escaped)
	ids, err := c.FindNotes(ctx, query)
	if err != nil {
		c.logger.Debug("anki_duplicate_check_failed", zap.Error(err))
		return false
	}
	return len(ids) > 0
}

// DeckStats counts notes per deck. Failures collapse to an empty map.
func (c *Client) DeckStats(ctx context.Context) map[string]int {
	stats := make(map[string]int)
	decks, err := c.DeckNames(ctx)
	if err != nil {
		c.logger.Debug("anki_stats_failed", zap.Error(err))
		return stats
	}
	for _, deck := range decks {
		ids, err := c.FindNotes(ctx, fmt.Sprintf(`deck:"%s"`, deck))
		if err != nil {
			c.logger.Debug("anki_stats_failed", zap.String("deck", deck), zap.Error(err))
			continue
		}
		stats[deck] = len(ids)
	}
	return stats
}
