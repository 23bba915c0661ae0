package extract

import (
	"regexp"
	"strings"
)

// minSuitableContentLength is the minimum body text length for a page
// to be worth capturing.
const minSuitableContentLength = 300

// skipPatterns name URL classes that never get captured: browser
// internals, local files, the AnkiConnect endpoint itself, auth pages,
// and search result pages.
var skipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^about:`),
	regexp.MustCompile(`^chrome:`),
	regexp.MustCompile(`^chrome-extension:`),
	regexp.MustCompile(`^file:`),
	regexp.MustCompile(`localhost:8765`),
	regexp.MustCompile(`(?i)^https?://[^/]*/(login|signin|signup|register)`),
	regexp.MustCompile(`^https?://[^/]*google\.[^/]*/search`),
	regexp.MustCompile(`^https?://[^/]*/search`),
}

// SuitabilityResult explains a suitability decision.
type SuitabilityResult struct {
	Suitable bool   `json:"suitable"`
	Reason   string `json:"reason,omitempty"`
}

// CheckSuitability decides whether a page should be captured: its URL
// must not match a skip pattern and its body text must carry at least
// minSuitableContentLength characters.
func CheckSuitability(pageURL, bodyText string) SuitabilityResult {
	for _, pattern := range skipPatterns {
		if pattern.MatchString(pageURL) {
			return SuitabilityResult{Suitable: false, Reason: "skipped_url"}
		}
	}
	if len(strings.TrimSpace(bodyText)) < minSuitableContentLength {
		return SuitabilityResult{Suitable: false, Reason: "insufficient_content"}
	}
	return SuitabilityResult{Suitable: true}
}
