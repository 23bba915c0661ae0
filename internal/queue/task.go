package queue

import (
	"time"

	"github.com/google/uuid"
)

// TaskFunc is the deferred unit of capture work.
type TaskFunc func() error

// Task wraps a capture closure with its scheduling metadata. The queue
// owns a task exclusively until it executes. AddedAt is diagnostic;
// ordering is by priority with insertion order breaking ties.
type Task struct {
	ID       uuid.UUID
	Priority int
	AddedAt  time.Time
	fn       TaskFunc
}

func newTask(fn TaskFunc, priority int) *Task {
	return &Task{
		ID:       uuid.New(),
		Priority: priority,
		AddedAt:  time.Now(),
		fn:       fn,
	}
}
