package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Capture modes.
const (
	CaptureModeManual = "manual"
	CaptureModeAuto   = "auto"
)

// Difficulty levels for generated flashcards.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Settings is the persisted, runtime-mutable configuration document.
// JSON keys match the wire format the extension surfaces use; partial
// updates are merged shallowly at the top level.
type Settings struct {
	APIProvider       string            `json:"apiProvider" validate:"required,oneof=openai anthropic custom"`
	AIModel           string            `json:"aiModel"`
	AnkiDeck          string            `json:"ankiDeck" validate:"required"`
	CaptureMode       string            `json:"captureMode" validate:"oneof=manual auto"`
	CustomAPIEndpoint string            `json:"customApiEndpoint,omitempty" validate:"omitempty,url"`
	CustomAPIParams   map[string]any    `json:"customApiParams,omitempty"`
	AutoCapture       AutoCaptureRules  `json:"autoCapture"`
	FlashcardSettings FlashcardSettings `json:"flashcardSettings"`
}

// AutoCaptureRules controls dwell-based automatic capture.
// MinDwellTime is milliseconds on the wire, matching the extension.
type AutoCaptureRules struct {
	Enabled      bool     `json:"enabled"`
	MinDwellTime int      `json:"minDwellTime" validate:"min=0"`
	Whitelist    []string `json:"whitelist"`
	Blacklist    []string `json:"blacklist"`
}

// DwellDuration returns the dwell threshold as a duration.
func (r AutoCaptureRules) DwellDuration() time.Duration {
	return time.Duration(r.MinDwellTime) * time.Millisecond
}

// FlashcardSettings controls generation behavior.
type FlashcardSettings struct {
	MaxPerPage    int    `json:"maxPerPage" validate:"min=1,max=50"`
	Difficulty    string `json:"difficulty" validate:"oneof=easy medium hard"`
	IncludeSource bool   `json:"includeSource"`
}

// DefaultSettings returns the document seeded on first run.
func DefaultSettings() *Settings {
	return &Settings{
		APIProvider: "openai",
		AnkiDeck:    "Ambient Anki",
		CaptureMode: CaptureModeManual,
		AutoCapture: AutoCaptureRules{
			Enabled:      false,
			MinDwellTime: 30000,
			Whitelist:    []string{},
			Blacklist:    []string{},
		},
		FlashcardSettings: FlashcardSettings{
			MaxPerPage:    5,
			Difficulty:    DifficultyMedium,
			IncludeSource: true,
		},
	}
}

var settingsValidator = validator.New()

// Validate checks the document against its field constraints.
func (s *Settings) Validate() error {
	return settingsValidator.Struct(s)
}
