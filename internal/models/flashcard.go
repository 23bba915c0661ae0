package models

import (
	"time"
)

// Flashcard is a generated question/answer pair ready for submission.
// Instances are immutable after normalization except for explicit user
// edits made before submission.
type Flashcard struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Tags      []string  `json:"tags"`
	Source    string    `json:"source"` // page URL the card was generated from
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// PageData is the normalized output of content extraction. Immutable
// once produced.
type PageData struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Content     string    `json:"content"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	Byline      string    `json:"byline,omitempty"`
	PublishDate string    `json:"publishDate,omitempty"`
	Language    string    `json:"language,omitempty"`
	Favicon     string    `json:"favicon,omitempty"`
	SiteName    string    `json:"siteName,omitempty"`
	Length      int       `json:"length"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// NoteResult is the per-card outcome of a submission attempt.
type NoteResult struct {
	Success   bool      `json:"success"`
	NoteID    *int64    `json:"noteId"`
	Flashcard Flashcard `json:"flashcard"`
	Error     string    `json:"error,omitempty"`
}

// SubmissionResult summarizes a batch submission. A partial failure
// (some duplicates rejected, others accepted) is a valid result, not an
// error.
type SubmissionResult struct {
	Total   int          `json:"total"`
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Results []NoteResult `json:"results"`
}
