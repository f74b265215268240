package ggmovie

import (
	"context"
	"runtime"
	"sync"

	"github.com/gogpu/ggmovie/render"
)

// Worker renders on a dedicated goroutine locked to its OS thread.
//
// The graphics resources are transferred to the render thread before the
// first frame and back to the controller after the last one. For every
// frame the controller posts a request and waits until the render thread
// has committed the scene state; it then advances the clock for the next
// frame while the render thread draws, captures and schedules the write.
type Worker struct {
	name string
}

// NewWorker returns a Worker scheduler.
func NewWorker() *Worker {
	return &Worker{name: "render-thread"}
}

func (w *Worker) Name() string { return "worker" }

func (w *Worker) Run(_ context.Context, loop FrameLoop) {
	go w.control(loop)
}

// handoff is the frame-synchronization point between the controller and
// the render thread.
type handoff struct {
	mu     sync.Mutex
	cond   *sync.Cond
	synced bool
}

func newHandoff() *handoff {
	h := &handoff{}
	h.cond = sync.NewCond(&h.mu)
	return h
}

func (h *handoff) reset() {
	h.mu.Lock()
	h.synced = false
	h.mu.Unlock()
}

func (h *handoff) signal() {
	h.mu.Lock()
	h.synced = true
	h.cond.Signal()
	h.mu.Unlock()
}

func (h *handoff) wait() {
	h.mu.Lock()
	for !h.synced {
		h.cond.Wait()
	}
	h.mu.Unlock()
}

func (w *Worker) control(loop FrameLoop) {
	controller := loop.Owner()
	thread := render.NewOwner(w.name)
	if err := loop.Transfer(thread); err != nil {
		loop.Finish(err)
		return
	}

	hs := newHandoff()
	requests := make(chan struct{})
	results := make(chan error)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		for range requests {
			err := loop.Step(thread, hs.signal)
			// Release the controller even if the step failed before
			// reaching sync.
			hs.signal()
			results <- err
		}
	}()

	var err error
	for i := 0; i < loop.Total(); i++ {
		hs.reset()
		requests <- struct{}{}
		hs.wait()
		loop.Advance()
		if err = <-results; err != nil {
			break
		}
	}
	close(requests)

	if terr := loop.Transfer(controller); terr != nil && err == nil {
		err = terr
	}
	loop.Finish(err)
}
