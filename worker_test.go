package ggmovie

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ggmovie/render"
)

// handoffLoop is a FrameLoop over a real Manager. Its Step commits, then
// blocks until the clock has advanced for that frame, so it only completes
// when the controller runs concurrently with the render thread.
type handoffLoop struct {
	m          *render.Manager
	controller *render.Owner
	total      int
	advanced   chan int
	finished   chan error

	mu     sync.Mutex
	frame  int
	events []string
	owners []*render.Owner
	denied []error
}

func newHandoffLoop(t *testing.T, total int) *handoffLoop {
	t.Helper()
	controller := render.NewOwner("controller")
	m := render.NewManager(render.NewSoftware(), nil)
	require.NoError(t, m.Initialize(controller, image.Pt(4, 4), render.DefaultPixelFormat()))
	t.Cleanup(m.Destroy)
	return &handoffLoop{
		m:          m,
		controller: controller,
		total:      total,
		advanced:   make(chan int, total),
		finished:   make(chan error, 1),
	}
}

func (l *handoffLoop) record(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *handoffLoop) Total() int { return l.total }

func (l *handoffLoop) Owner() *render.Owner { return l.m.Owner() }

func (l *handoffLoop) Transfer(to *render.Owner) error {
	return l.m.Transfer(l.m.Owner(), to)
}

func (l *handoffLoop) Step(owner *render.Owner, afterSync func()) error {
	if err := l.m.MakeCurrent(owner); err != nil {
		return err
	}
	defer func() { _ = l.m.ReleaseCurrent(owner) }()

	l.mu.Lock()
	l.frame++
	frame := l.frame
	l.owners = append(l.owners, owner)
	l.denied = append(l.denied, l.m.MakeCurrent(l.controller))
	l.mu.Unlock()

	l.record("sync %d", frame)
	afterSync()

	select {
	case n := <-l.advanced:
		if n != frame {
			return fmt.Errorf("clock advanced for frame %d during frame %d", n, frame)
		}
	case <-time.After(5 * time.Second):
		return errors.New("clock did not advance while the frame rendered")
	}
	l.record("render %d", frame)
	return nil
}

func (l *handoffLoop) Advance() {
	l.mu.Lock()
	n := l.frame
	l.mu.Unlock()
	l.record("advance %d", n)
	l.advanced <- n
}

func (l *handoffLoop) Finish(err error) {
	l.finished <- err
}

func TestWorkerAdvancesClockWhileFrameRenders(t *testing.T) {
	loop := newHandoffLoop(t, 3)
	NewWorker().Run(context.Background(), loop)

	select {
	case err := <-loop.finished:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not finish")
	}

	loop.mu.Lock()
	defer loop.mu.Unlock()
	assert.Equal(t, []string{
		"sync 1", "advance 1", "render 1",
		"sync 2", "advance 2", "render 2",
		"sync 3", "advance 3", "render 3",
	}, loop.events)

	require.Len(t, loop.owners, 3)
	for i, owner := range loop.owners {
		assert.NotSame(t, loop.controller, owner, "frame %d", i+1)
		assert.Same(t, loop.owners[0], owner, "frame %d", i+1)
		assert.True(t, strings.HasPrefix(owner.String(), "render-thread#"), owner.String())
	}
	for i, err := range loop.denied {
		assert.ErrorIs(t, err, render.ErrWrongOwner, "frame %d", i+1)
	}
	assert.Same(t, loop.controller, loop.m.Owner(), "ownership returns to the controller")
}
