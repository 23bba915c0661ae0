package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential indicates no API key is configured for the
	// selected provider.
	ErrMissingCredential = errors.New("no API key configured")
	// ErrEndpointNotConfigured indicates the custom provider was
	// selected without an endpoint.
	ErrEndpointNotConfigured = errors.New("custom API endpoint not configured")
	// ErrResponseParse indicates the model output was not valid JSON
	// and bracket-extraction recovery also failed.
	ErrResponseParse = errors.New("failed to parse AI response as JSON")
	// ErrEmptyResult indicates the response parsed but did not carry an
	// array of flashcards.
	ErrEmptyResult = errors.New("AI did not return an array of flashcards")
)

// APIError is a non-success HTTP response from an LLM vendor, carrying
// the upstream error message when it was parseable.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsConfigurationError reports whether the error is a missing
// credential or missing endpoint, i.e. fixable in settings rather than
// transient.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrEndpointNotConfigured)
}
