package ggmovie

import (
	"sync"

	"github.com/google/uuid"
)

// Listener is notified about job progress.
//
// Under the Synchronous scheduler render progress is reported on the
// goroutine that called StartRenderJob. Write progress and the final
// OnFinished or OnFailed come from writer goroutines. Calls for one job
// never overlap.
type Listener interface {
	OnRenderProgress(pct int)
	OnWriteProgress(pct int)
	OnFinished(r Report)
	OnFailed(err error)
}

// ListenerFuncs adapts functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	RenderProgress func(pct int)
	WriteProgress  func(pct int)
	Finished       func(r Report)
	Failed         func(err error)
}

func (f ListenerFuncs) OnRenderProgress(pct int) {
	if f.RenderProgress != nil {
		f.RenderProgress(pct)
	}
}

func (f ListenerFuncs) OnWriteProgress(pct int) {
	if f.WriteProgress != nil {
		f.WriteProgress(pct)
	}
}

func (f ListenerFuncs) OnFinished(r Report) {
	if f.Finished != nil {
		f.Finished(r)
	}
}

func (f ListenerFuncs) OnFailed(err error) {
	if f.Failed != nil {
		f.Failed(err)
	}
}

// EventKind identifies a job event.
type EventKind int

const (
	EventRenderProgress EventKind = iota
	EventWriteProgress
	EventFinished
	EventFailed
)

var eventNames = [...]string{"render", "write", "finished", "failed"}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is what JobHandle.Subscribe delivers.
type Event struct {
	Kind    EventKind
	JobID   uuid.UUID
	Percent int
	Report  *Report
	Err     error
}

// Terminal reports whether e is the last event of its job.
func (e Event) Terminal() bool {
	return e.Kind == EventFinished || e.Kind == EventFailed
}

// eventBus fans job events out to subscriber channels. Progress events are
// dropped for subscribers that fall behind; the terminal event is always
// delivered, after which every channel is closed.
type eventBus struct {
	mu     sync.Mutex
	subs   []chan Event
	last   *Event
	closed bool
}

const subscriberBuffer = 64

func (b *eventBus) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		if b.last != nil {
			ch <- *b.last
		}
		close(ch)
		return ch, func() {}
	}
	b.subs = append(b.subs, ch)
	return ch, func() { b.unsubscribe(ch) }
}

func (b *eventBus) unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (b *eventBus) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	if !e.Terminal() {
		for _, ch := range b.subs {
			select {
			case ch <- e:
			default:
			}
		}
		return
	}

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Make room by dropping the oldest progress event.
			select {
			case <-ch:
			default:
			}
			ch <- e
		}
		close(ch)
	}
	b.subs = nil
	b.last = &e
	b.closed = true
}
