package ggmovie

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogpu/ggmovie/render"
)

// FrameLoop is the render loop of one job as seen by a Scheduler.
//
// A scheduler calls Step then Advance Total times, in order, and calls
// Finish exactly once, after the last Step or at the first error. Step must
// be called by the owner of the graphics resources.
type FrameLoop interface {
	// Total returns the number of frames to render.
	Total() int

	// Owner returns the current owner of the graphics resources.
	Owner() *render.Owner

	// Transfer hands the graphics resources to another owner.
	Transfer(to *render.Owner) error

	// Step renders, captures and schedules the write of the next frame.
	// afterSync, if not nil, runs once the scene state has been committed.
	Step(owner *render.Owner, afterSync func()) error

	// Advance moves the animation clock to the next frame.
	Advance()

	// Finish tears the job down. err is the error that stopped the loop.
	Finish(err error)
}

// Scheduler decides where and when the frames of a job are rendered.
// Run may return before the loop has finished.
type Scheduler interface {
	Name() string
	Run(ctx context.Context, loop FrameLoop)
}

// SchedulerByName returns a new scheduler: "sync" (or "synchronous"),
// "cooperative" or "worker".
func SchedulerByName(name string) (Scheduler, error) {
	switch strings.ToLower(name) {
	case "sync", "synchronous":
		return Synchronous{}, nil
	case "cooperative":
		return &Cooperative{}, nil
	case "worker":
		return NewWorker(), nil
	}
	return nil, fmt.Errorf("unknown scheduler %q", name)
}

// Synchronous renders every frame on the goroutine that started the job.
// StartRenderJob returns once the loop has run and the job is in Cleanup
// or later.
type Synchronous struct{}

func (Synchronous) Name() string { return "sync" }

func (Synchronous) Run(_ context.Context, loop FrameLoop) {
	owner := loop.Owner()
	var err error
	for i := 0; i < loop.Total(); i++ {
		if err = loop.Step(owner, nil); err != nil {
			break
		}
		loop.Advance()
	}
	loop.Finish(err)
}

// Cooperative renders one frame per event on an EventQueue, so other
// events posted to the queue run between frames.
//
// With a nil Queue the scheduler creates one per job and runs it on its
// own goroutine. A caller-supplied Queue must be run by the caller.
type Cooperative struct {
	Queue *EventQueue
}

func (c *Cooperative) Name() string { return "cooperative" }

func (c *Cooperative) Run(ctx context.Context, loop FrameLoop) {
	q := c.Queue
	finish := loop.Finish
	if q == nil {
		q = NewEventQueue()
		go func() { _ = q.Run(ctx) }()
		finish = func(err error) {
			loop.Finish(err)
			q.Close()
		}
	}

	owner := loop.Owner()
	total := loop.Total()
	next := 0

	var frame func()
	frame = func() {
		if next >= total {
			finish(nil)
			return
		}
		if err := loop.Step(owner, nil); err != nil {
			finish(err)
			return
		}
		loop.Advance()
		next++
		if err := q.Post(frame); err != nil {
			finish(err)
		}
	}
	if err := q.Post(frame); err != nil {
		finish(err)
	}
}
