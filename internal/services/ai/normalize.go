package ai

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ambientanki/ambientd/internal/models"
)

// ProvenanceTag marks every generated card as originating from this
// system.
const ProvenanceTag = "ambient-anki"

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize maps raw model cards into flashcards: question/front and
// answer/back aliases are coalesced, tags default to empty, source
// url/title and a creation timestamp are attached, and each card gets
// an id unique within the batch. The provenance tag is always appended;
// a normalized site-name tag follows when available.
func Normalize(raw []RawCard, page *models.PageData, settings *models.Settings) []models.Flashcard {
	now := time.Now().UTC()
	batch := now.UnixMilli()

	cards := make([]models.Flashcard, 0, len(raw))
	for i, rc := range raw {
		question := rc.Question
		if question == "" {
			question = rc.Front
		}
		answer := rc.Answer
		if answer == "" {
			answer = rc.Back
		}

		if settings.FlashcardSettings.IncludeSource {
			answer += fmt.Sprintf("\n\nSource: %s\n%s", page.Title, page.URL)
		}

		tags := append([]string{}, rc.Tags...)
		tags = append(tags, ProvenanceTag)
		if page.SiteName != "" {
			tags = append(tags, SiteTag(page.SiteName))
		}

		cards = append(cards, models.Flashcard{
			ID:        fmt.Sprintf("%d-%d", batch, i),
			Question:  question,
			Answer:    answer,
			Tags:      tags,
			Source:    page.URL,
			Title:     page.Title,
			CreatedAt: now,
		})
	}
	return cards
}

// SiteTag lowercases a site name and collapses whitespace into hyphens.
func SiteTag(siteName string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(siteName)), "-")
}
