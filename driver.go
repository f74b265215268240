package ggmovie

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/ggmovie/progress"
)

// Driver renders movies, one job at a time.
type Driver struct {
	opts driverOptions
	log  *slog.Logger

	mu     sync.Mutex
	active *JobHandle
	halted error
}

// NewDriver returns a Driver configured by opts.
func NewDriver(opts ...Option) *Driver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return &Driver{
		opts: o,
		log:  o.logger.With("component", "driver"),
	}
}

// Active returns the handle of the running job, or nil.
func (d *Driver) Active() *JobHandle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Halted returns the fatal error that halted the Driver, or nil.
func (d *Driver) Halted() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.halted
}

// StartRenderJob validates req and starts rendering it.
//
// Invalid requests are rejected with ErrInvalidRequest and a busy Driver
// returns ErrBusy; in both cases no job is created. Otherwise the returned
// handle tracks the job, which may already have failed. How much of the
// job has run when StartRenderJob returns depends on the scheduler.
//
// ctx bounds waiting for write slots and, for the Cooperative scheduler,
// running its queue. It does not cancel a job otherwise.
func (d *Driver) StartRenderJob(ctx context.Context, req Request) (*JobHandle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	sched := d.opts.scheduler
	if req.Scheduling != "" {
		s, err := SchedulerByName(req.Scheduling)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		sched = s
	}

	h := newJobHandle(Job{
		ID:          uuid.New(),
		Request:     req,
		Status:      StatusIdle,
		TotalFrames: req.TotalFrames(),
		StartedAt:   time.Now(),
	}, d.opts.listeners)

	d.mu.Lock()
	if d.halted != nil {
		err := d.halted
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrDriverHalted, err)
	}
	if d.active != nil {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.active = h
	d.mu.Unlock()

	r := newRunner(ctx, d, h)
	if err := r.initialize(); err != nil {
		r.Finish(err)
		return h, nil
	}
	d.log.Debug("scheduling job", "job", h.ID().String(), "scheduler", sched.Name())
	sched.Run(ctx, r)
	return h, nil
}

// RenderMovie renders req and waits for the job to end.
func (d *Driver) RenderMovie(ctx context.Context, req Request) (Report, error) {
	h, err := d.StartRenderJob(ctx, req)
	if err != nil {
		return Report{}, err
	}
	return h.Wait(ctx)
}

// release frees the job slot. A fatal err halts the Driver.
func (d *Driver) release(h *JobHandle, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == h {
		d.active = nil
	}
	if IsFatal(err) && d.halted == nil {
		d.halted = err
		d.log.Error("driver halted", "error", err)
	}
}

// JobHandle tracks a started job.
type JobHandle struct {
	job       Job
	listeners []Listener
	bus       eventBus
	done      chan struct{}

	mu       sync.Mutex
	status   Status
	current  int
	progress *progress.Reporter
	report   Report
	err      error

	// notify serializes listener calls.
	notify sync.Mutex
}

var _ progress.Sink = (*JobHandle)(nil)

func newJobHandle(job Job, listeners []Listener) *JobHandle {
	return &JobHandle{
		job:       job,
		listeners: listeners,
		done:      make(chan struct{}),
		status:    job.Status,
	}
}

// ID returns the job ID.
func (h *JobHandle) ID() uuid.UUID { return h.job.ID }

// Job returns a snapshot of the job.
func (h *JobHandle) Job() Job {
	h.mu.Lock()
	defer h.mu.Unlock()
	j := h.job
	j.Status = h.status
	j.CurrentFrame = h.current
	return j
}

// Status returns the job status.
func (h *JobHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Progress returns the render and write percentages.
func (h *JobHandle) Progress() (render, write int) {
	h.mu.Lock()
	p := h.progress
	h.mu.Unlock()
	if p == nil {
		return 0, 0
	}
	return p.Render(), p.Write()
}

// Done is closed when the job is Finished or Failed.
func (h *JobHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the job ends or ctx is done.
func (h *JobHandle) Wait(ctx context.Context) (Report, error) {
	select {
	case <-h.done:
		return h.Result()
	case <-ctx.Done():
		return Report{}, ctx.Err()
	}
}

// Result returns the report and error of an ended job. Before that it
// returns the zero Report and a nil error.
func (h *JobHandle) Result() (Report, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.report, h.err
}

// Subscribe returns a channel of job events and a function that cancels
// the subscription. The channel is closed after the terminal event.
func (h *JobHandle) Subscribe() (<-chan Event, func()) {
	return h.bus.subscribe()
}

// RenderProgress implements progress.Sink.
func (h *JobHandle) RenderProgress(pct int) {
	h.notify.Lock()
	defer h.notify.Unlock()
	for _, l := range h.listeners {
		l.OnRenderProgress(pct)
	}
	h.bus.publish(Event{Kind: EventRenderProgress, JobID: h.job.ID, Percent: pct})
}

// WriteProgress implements progress.Sink.
func (h *JobHandle) WriteProgress(pct int) {
	h.notify.Lock()
	defer h.notify.Unlock()
	for _, l := range h.listeners {
		l.OnWriteProgress(pct)
	}
	h.bus.publish(Event{Kind: EventWriteProgress, JobID: h.job.ID, Percent: pct})
}

func (h *JobHandle) setStatus(s Status) {
	h.mu.Lock()
	h.status = s
	h.mu.Unlock()
}

func (h *JobHandle) setCurrent(n int) {
	h.mu.Lock()
	h.current = n
	h.mu.Unlock()
}

func (h *JobHandle) setProgress(p *progress.Reporter) {
	h.mu.Lock()
	h.progress = p
	h.mu.Unlock()
}

// finish and fail notify listeners before Done is closed, so a returned
// Wait observes every callback.
func (h *JobHandle) finish(r Report) {
	h.end(r, nil)
	defer close(h.done)
	h.notify.Lock()
	defer h.notify.Unlock()
	for _, l := range h.listeners {
		l.OnFinished(r)
	}
	h.bus.publish(Event{Kind: EventFinished, JobID: h.job.ID, Percent: 100, Report: &r})
}

func (h *JobHandle) fail(r Report, err error) {
	h.end(r, err)
	defer close(h.done)
	h.notify.Lock()
	defer h.notify.Unlock()
	for _, l := range h.listeners {
		l.OnFailed(err)
	}
	h.bus.publish(Event{Kind: EventFailed, JobID: h.job.ID, Report: &r, Err: err})
}

func (h *JobHandle) end(r Report, err error) {
	h.mu.Lock()
	h.status = r.Status
	h.report = r
	h.err = err
	h.mu.Unlock()
}
