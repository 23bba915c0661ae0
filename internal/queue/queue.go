package queue

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Options configures a Queue. Zero values fall back to the defaults
// matching production behavior; tests shrink the delays.
type Options struct {
	// MaxConcurrent bounds simultaneously executing tasks. Default 1.
	MaxConcurrent int
	// RateLimit is the token bucket capacity. Default 10.
	RateLimit int
	// RefillRate is tokens added per minute. Default 1.
	RefillRate float64
	// RefillInterval is the periodic refill tick. Default 1 minute.
	RefillInterval time.Duration
	// RetryDelay is how long to wait before retrying when no rate-limit
	// token is available. Default 1 minute.
	RetryDelay time.Duration
	// TaskDelay is the spacing between consecutive tasks, avoiding a
	// tight loop starving other work. Default 1 second.
	TaskDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConcurrent < 1 {
		o.MaxConcurrent = 1
	}
	if o.RateLimit < 1 {
		o.RateLimit = 10
	}
	if o.RefillRate <= 0 {
		o.RefillRate = 1
	}
	if o.RefillInterval <= 0 {
		o.RefillInterval = time.Minute
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Minute
	}
	if o.TaskDelay <= 0 {
		o.TaskDelay = time.Second
	}
	return o
}

// ProcessListener observes a task about to run.
type ProcessListener func(*Task)

// ErrorListener observes a task failure. Failures are reported, never
// retried by the queue; re-enqueueing is the caller's decision.
type ErrorListener func(*Task, error)

// Queue is a priority-ordered capture scheduler with a single (or
// bounded) execution slot and token-bucket rate limiting. Listeners are
// invoked synchronously in registration order.
type Queue struct {
	mu          sync.Mutex
	opts        Options
	items       []*Task
	processing  bool
	activeCount int
	limiter     *RateLimiter
	processFns  []ProcessListener
	errorFns    []ErrorListener
	timers      map[*time.Timer]struct{}
	closed      bool
	done        chan struct{}
}

// New creates a queue and starts its periodic refill tick.
func New(opts Options) *Queue {
	opts = opts.withDefaults()
	q := &Queue{
		opts:    opts,
		limiter: NewRateLimiter(opts.RateLimit, opts.RefillRate),
		timers:  make(map[*time.Timer]struct{}),
		done:    make(chan struct{}),
	}
	go q.refillLoop()
	return q
}

// OnProcess registers a listener fired just before each task runs.
func (q *Queue) OnProcess(fn ProcessListener) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processFns = append(q.processFns, fn)
}

// OnError registers a listener fired when a task returns an error or
// panics.
func (q *Queue) OnError(fn ErrorListener) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errorFns = append(q.errorFns, fn)
}

// Add enqueues a task and triggers processing. Higher priority runs
// first; equal priorities keep insertion order (stable sort).
func (q *Queue) Add(fn TaskFunc, priority int) *Task {
	task := newTask(fn, priority)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return task
	}
	q.items = append(q.items, task)
	sort.SliceStable(q.items, func(i, j int) bool {
		return q.items[i].Priority > q.items[j].Priority
	})
	q.mu.Unlock()

	go q.process()
	return task
}

// Len reports the number of queued (not yet started) tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops all queued tasks. In-flight work is unaffected.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Close stops the refill tick and cancels all pending scheduled
// retries. Queued tasks are dropped; an in-flight task finishes.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.items = nil
	for t := range q.timers {
		t.Stop()
	}
	q.timers = make(map[*time.Timer]struct{})
	q.mu.Unlock()
	close(q.done)
}

func (q *Queue) refillLoop() {
	ticker := time.NewTicker(q.opts.RefillInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			q.limiter.Refill()
		case <-q.done:
			return
		}
	}
}

// process pops the highest-priority task and runs it, respecting the
// processing flag and concurrency cap. When the rate limiter has no
// token the task goes back to the front and a retry is scheduled
// without consuming the execution slot.
func (q *Queue) process() {
	q.mu.Lock()
	if q.closed || q.processing || q.activeCount >= q.opts.MaxConcurrent || len(q.items) == 0 {
		q.mu.Unlock()
		return
	}

	task := q.items[0]
	q.items = q.items[1:]

	if !q.limiter.ConsumeToken() {
		q.items = append([]*Task{task}, q.items...)
		q.scheduleLocked(q.opts.RetryDelay)
		q.mu.Unlock()
		return
	}

	q.processing = true
	q.activeCount++
	processFns := append([]ProcessListener(nil), q.processFns...)
	q.mu.Unlock()

	for _, fn := range processFns {
		fn(task)
	}

	err := runTask(task)

	q.mu.Lock()
	q.activeCount--
	q.processing = false
	errorFns := append([]ErrorListener(nil), q.errorFns...)
	if len(q.items) > 0 && !q.closed {
		q.scheduleLocked(q.opts.TaskDelay)
	}
	q.mu.Unlock()

	if err != nil {
		for _, fn := range errorFns {
			fn(task, err)
		}
	}
}

// scheduleLocked arms a cancellable timer that re-enters process.
// Caller holds q.mu.
func (q *Queue) scheduleLocked(d time.Duration) {
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		q.mu.Lock()
		delete(q.timers, t)
		q.mu.Unlock()
		q.process()
	})
	q.timers[t] = struct{}{}
}

func runTask(task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return task.fn()
}
