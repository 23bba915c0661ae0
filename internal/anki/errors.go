package anki

import (
	"errors"
	"fmt"
)

// ErrNoTemplateAvailable indicates Anki has no note models at all, so
// no note can be constructed.
var ErrNoTemplateAvailable = errors.New("no note models available in Anki")

// ConnectionError wraps a transport failure reaching the AnkiConnect
// endpoint. Anki is probably not running.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return "Cannot connect to Anki. Make sure Anki is running with AnkiConnect addon installed."
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RemoteError is a non-nil error field in an AnkiConnect response
// envelope.
type RemoteError struct {
	Action  string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("AnkiConnect error: %s", e.Message)
}
