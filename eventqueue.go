package ggmovie

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned when posting to a closed EventQueue.
var ErrQueueClosed = errors.New("ggmovie: event queue closed")

// EventQueue runs posted functions one at a time, in order, on the
// goroutine that calls Run. Posting never blocks, including from inside an
// event.
type EventQueue struct {
	mu     sync.Mutex
	events []func()
	closed bool
	wake   chan struct{}
}

// NewEventQueue returns an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{wake: make(chan struct{}, 1)}
}

// Post appends fn to the queue.
func (q *EventQueue) Post(fn func()) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.events = append(q.events, fn)
	q.mu.Unlock()
	q.signal()
	return nil
}

// Len returns the number of events waiting.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close stops accepting events. Run returns once the events already posted
// have run.
func (q *EventQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// Run processes events until the queue is closed and drained, or ctx is
// done.
func (q *EventQueue) Run(ctx context.Context) error {
	for {
		fn, closed := q.pop()
		if fn != nil {
			fn()
			continue
		}
		if closed {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		}
	}
}

func (q *EventQueue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil, q.closed
	}
	fn := q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]
	return fn, q.closed
}

func (q *EventQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
