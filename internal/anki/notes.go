package anki

import (
	"context"

	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/models"
)

// preferredModel is used when present; otherwise the first available
// model is taken.
const preferredModel = "Basic"

// note is the AnkiConnect addNote/addNotes payload shape.
type note struct {
	DeckName  string            `json:"deckName"`
	ModelName string            `json:"modelName"`
	Fields    map[string]string `json:"fields"`
	Tags      []string          `json:"tags"`
	Options   noteOptions       `json:"options"`
}

type noteOptions struct {
	AllowDuplicate        bool                  `json:"allowDuplicate"`
	DuplicateScope        string                `json:"duplicateScope"`
	DuplicateScopeOptions duplicateScopeOptions `json:"duplicateScopeOptions"`
}

type duplicateScopeOptions struct {
	DeckName       string `json:"deckName"`
	CheckChildren  bool   `json:"checkChildren"`
	CheckAllModels bool   `json:"checkAllModels"`
}

// AddNote submits one note, returning the new note id.
func (c *Client) AddNote(ctx context.Context, n note) (int64, error) {
	var id int64
	if err := c.invoke(ctx, "addNote", map[string]any{"note": n}, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// addNotes batch-submits notes. AnkiConnect returns null in place of an
// id for each note it rejected, which decodes as a nil pointer.
func (c *Client) addNotes(ctx context.Context, notes []note) ([]*int64, error) {
	var ids []*int64
	if err := c.invoke(ctx, "addNotes", map[string]any{"notes": notes}, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// AddFlashcards submits flashcards to the given deck, creating it when
// missing. Notes go out as one batch; if the batch call itself fails,
// each note is retried individually so one bad card cannot sink the
// rest. Duplicates within the deck are rejected, not overwritten.
func (c *Client) AddFlashcards(ctx context.Context, cards []models.Flashcard, deck string) (*models.SubmissionResult, error) {
	if err := c.EnsureDeck(ctx, deck); err != nil {
		return nil, err
	}

	modelNames, err := c.ModelNames(ctx)
	if err != nil {
		return nil, err
	}
	if len(modelNames) == 0 {
		return nil, ErrNoTemplateAvailable
	}
	model := modelNames[0]
	for _, name := range modelNames {
		if name == preferredModel {
			model = preferredModel
			break
		}
	}

	notes := make([]note, len(cards))
	for i, card := range cards {
		tags := card.Tags
		if tags == nil {
			tags = []string{}
		}
		notes[i] = note{
			DeckName:  deck,
			ModelName: model,
			Fields: map[string]string{
				"Front": card.Question,
				"Back":  card.Answer,
			},
			Tags: tags,
			Options: noteOptions{
				AllowDuplicate: false,
				DuplicateScope: "deck",
				DuplicateScopeOptions: duplicateScopeOptions{
					DeckName:       deck,
					CheckChildren:  false,
					CheckAllModels: false,
				},
			},
		}
	}

	ids, err := c.addNotes(ctx, notes)
	if err != nil {
		c.logger.Warn("anki_batch_add_failed", zap.Error(err), zap.Int("note_count", len(notes)))
		return c.addIndividually(ctx, notes, cards), nil
	}
	if len(ids) != len(notes) {
		c.logger.Warn("anki_batch_result_mismatch",
			zap.Int("note_count", len(notes)),
			zap.Int("result_count", len(ids)),
		)
		return c.addIndividually(ctx, notes, cards), nil
	}

	result := &models.SubmissionResult{Total: len(cards)}
	for i, id := range ids {
		r := models.NoteResult{Flashcard: cards[i]}
		if id != nil {
			r.Success = true
			r.NoteID = id
			result.Success++
		} else {
			r.Error = "Duplicate or invalid note"
			result.Failed++
		}
		result.Results = append(result.Results, r)
	}
	return result, nil
}

// addIndividually is the batch fallback: per-note submission with
// independent success tracking.
func (c *Client) addIndividually(ctx context.Context, notes []note, cards []models.Flashcard) *models.SubmissionResult {
	result := &models.SubmissionResult{Total: len(cards)}
	for i := range notes {
		r := models.NoteResult{Flashcard: cards[i]}
		id, err := c.AddNote(ctx, notes[i])
		if err != nil {
			r.Error = err.Error()
			result.Failed++
		} else {
			r.Success = true
			r.NoteID = &id
			result.Success++
		}
		result.Results = append(result.Results, r)
	}
	return result
}
