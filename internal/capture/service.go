// Package capture orchestrates a full page capture: extract content,
// skip recently captured pages, generate flashcards, submit them to
// Anki, and record the outcome in history.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/extract"
	"github.com/ambientanki/ambientd/internal/models"
)

// recentCaptureWindow suppresses repeat captures of the same URL.
const recentCaptureWindow = time.Hour

// ErrNoFlashcards indicates the provider returned an empty card list.
var ErrNoFlashcards = errors.New("no flashcards generated")

// Skip reasons reported in Result.Reason.
const (
	ReasonRecentlyCaptured = "recently_captured"
	ReasonNotSuitable      = "not_suitable"
)

// Extractor produces page data from a URL or pre-fetched HTML.
type Extractor interface {
	ExtractURL(ctx context.Context, pageURL string) (*models.PageData, error)
	ExtractHTML(html, pageURL string) (*models.PageData, error)
}

// Generator turns page data into flashcards.
type Generator interface {
	GenerateFlashcards(ctx context.Context, page *models.PageData, settings *models.Settings) ([]models.Flashcard, error)
}

// Submitter delivers flashcards to the flashcard manager.
type Submitter interface {
	AddFlashcards(ctx context.Context, cards []models.Flashcard, deck string) (*models.SubmissionResult, error)
}

// Store is the persistence surface the orchestrator needs.
type Store interface {
	Settings(ctx context.Context) (*models.Settings, error)
	AddHistory(ctx context.Context, entry *models.CaptureHistoryEntry) error
	RecentCapture(ctx context.Context, url string, since time.Time) (*models.CaptureHistoryEntry, error)
}

// Request describes one capture. HTML, when set, is used instead of
// fetching the URL; the extension posts the rendered DOM this way.
type Request struct {
	URL   string
	HTML  string
	Force bool
	Auto  bool
	TabID int
}

// Result is the capture outcome. A skip is not an error: Skipped and
// Reason are set and the remaining fields stay empty.
type Result struct {
	Skipped     bool                        `json:"skipped,omitempty"`
	Reason      string                      `json:"reason,omitempty"`
	LastCapture *models.CaptureHistoryEntry `json:"lastCapture,omitempty"`
	PageData    *models.PageData            `json:"pageData,omitempty"`
	Flashcards  []models.Flashcard          `json:"flashcards,omitempty"`
	Submission  *models.SubmissionResult    `json:"ankiResults,omitempty"`
}

// Service composes the capture pipeline.
type Service struct {
	extractor Extractor
	generator Generator
	submitter Submitter
	store     Store
	logger    *zap.Logger
}

// NewService creates the orchestrator.
func NewService(extractor Extractor, generator Generator, submitter Submitter, store Store, logger *zap.Logger) *Service {
	return &Service{
		extractor: extractor,
		generator: generator,
		submitter: submitter,
		store:     store,
		logger:    logger,
	}
}

// Capture runs the pipeline end to end. Force bypasses both the
// suitability and recent-capture gates.
func (s *Service) Capture(ctx context.Context, req Request) (*Result, error) {
	var page *models.PageData
	var err error
	if req.HTML != "" {
		page, err = s.extractor.ExtractHTML(req.HTML, req.URL)
	} else {
		page, err = s.extractor.ExtractURL(ctx, req.URL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to extract content: %w", err)
	}

	if !req.Force {
		if suitability := extract.CheckSuitability(page.URL, page.Content); !suitability.Suitable {
			s.logger.Debug("capture_skipped",
				zap.String("url", page.URL),
				zap.String("reason", suitability.Reason),
			)
			return &Result{Skipped: true, Reason: ReasonNotSuitable}, nil
		}
	}

	if !req.Force {
		recent, err := s.store.RecentCapture(ctx, page.URL, time.Now().Add(-recentCaptureWindow))
		if err != nil {
			return nil, fmt.Errorf("failed to check capture history: %w", err)
		}
		if recent != nil {
			s.logger.Debug("capture_skipped",
				zap.String("url", page.URL),
				zap.String("reason", ReasonRecentlyCaptured),
			)
			return &Result{Skipped: true, Reason: ReasonRecentlyCaptured, LastCapture: recent}, nil
		}
	}

	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	cards, err := s.generator.GenerateFlashcards(ctx, page, settings)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, ErrNoFlashcards
	}

	submission, err := s.submitter.AddFlashcards(ctx, cards, settings.AnkiDeck)
	if err != nil {
		return nil, err
	}

	entry := &models.CaptureHistoryEntry{
		ID:             uuid.NewString(),
		URL:            page.URL,
		Title:          page.Title,
		CapturedAt:     time.Now().UTC(),
		FlashcardCount: len(cards),
		Submission:     submission,
	}
	if err := s.store.AddHistory(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record capture history: %w", err)
	}

	s.logger.Info("capture_completed",
		zap.String("url", page.URL),
		zap.Bool("auto", req.Auto),
		zap.Int("flashcard_count", len(cards)),
		zap.Int("submitted", submission.Success),
		zap.Int("rejected", submission.Failed),
	)

	return &Result{PageData: page, Flashcards: cards, Submission: submission}, nil
}
