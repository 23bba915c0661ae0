package ai

import (
	"fmt"
	"unicode/utf8"

	"github.com/ambientanki/ambientd/internal/models"
)

const (
	// maxPromptContentLength truncates page content injected into the
	// prompt.
	maxPromptContentLength = 4000
	// defaultMaxCards is the card count when settings carry none.
	defaultMaxCards = 5

	// systemPrompt is shared by the chat-style providers.
	systemPrompt = "You are a helpful assistant that creates Anki flashcards. Always respond with valid JSON only."
)

var difficultyInstructions = map[string]string{
	models.DifficultyEasy:   "Create simple, factual questions with straightforward answers.",
	models.DifficultyMedium: "Create questions that test understanding and key concepts.",
	models.DifficultyHard:   "Create challenging questions that require deep understanding and critical thinking.",
}

// BuildPrompt renders the generation prompt: truncated page content,
// the target card count, the difficulty instruction, and a strict
// JSON-array-only response contract.
func BuildPrompt(page *models.PageData, settings *models.Settings) string {
	maxCards := settings.FlashcardSettings.MaxPerPage
	if maxCards <= 0 {
		maxCards = defaultMaxCards
	}

	instruction, ok := difficultyInstructions[settings.FlashcardSettings.Difficulty]
	if !ok {
		instruction = difficultyInstructions[models.DifficultyMedium]
	}

	content := truncate(page.Content, maxPromptContentLength)

	return fmt.Sprintf(`You are an expert educator creating Anki flashcards from web content.

Title: %s
URL: %s
Content: %s

Create %d high-quality flashcards from this content. %s

Requirements:
1. Each flashcard should have a clear question and comprehensive answer
2. Focus on the most important and memorable information
3. Avoid yes/no questions unless absolutely necessary
4. Make questions specific and unambiguous
5. Include context in the question when needed
6. Answers should be concise but complete

Return the flashcards as a JSON array with this exact format:
[
  {
    "question": "What is the main concept discussed?",
    "answer": "The main concept is...",
    "tags": ["concept", "definition"]
  }
]

Only return the JSON array, no other text.`,
		page.Title, page.URL, content, maxCards, instruction)
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
