package models

import "time"

// MaxHistoryEntries caps the capture history log. The oldest entry is
// evicted first once the cap is reached.
const MaxHistoryEntries = 1000

// CaptureHistoryEntry records one completed capture. Append-only.
type CaptureHistoryEntry struct {
	ID             string            `json:"id"`
	URL            string            `json:"url"`
	Title          string            `json:"title"`
	CapturedAt     time.Time         `json:"capturedAt"`
	FlashcardCount int               `json:"flashcardCount"`
	Submission     *SubmissionResult `json:"ankiResults,omitempty"`
}
