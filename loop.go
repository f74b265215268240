package ggmovie

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/ggmovie/capture"
	"github.com/gogpu/ggmovie/clock"
	"github.com/gogpu/ggmovie/progress"
	"github.com/gogpu/ggmovie/render"
	"github.com/gogpu/ggmovie/scene"
)

// runner owns the resources of one job and implements FrameLoop.
type runner struct {
	d      *Driver
	h      *JobHandle
	req    Request
	ctx    context.Context
	log    *slog.Logger
	total  int
	start  time.Time
	engine scene.Engine

	manager  *render.Manager
	host     *scene.Host
	target   *render.FrameTarget
	clock    *clock.Virtual
	writer   *capture.Writer
	progress *progress.Reporter

	// current is only touched by the goroutine calling Step.
	current int
}

var _ FrameLoop = (*runner)(nil)

func newRunner(ctx context.Context, d *Driver, h *JobHandle) *runner {
	req := h.job.Request
	return &runner{
		d:     d,
		h:     h,
		req:   req,
		ctx:   ctx,
		log:   d.log.With("job", h.job.ID.String()),
		total: req.TotalFrames(),
		start: h.job.StartedAt,
	}
}

// initialize runs Idle -> Initializing -> Running. On error the job has
// not rendered anything and the caller fails it.
func (r *runner) initialize() error {
	r.h.setStatus(StatusInitializing)
	r.log.Info("render job started",
		"scene", r.req.SceneSource,
		"frames", r.total,
		"fps", r.req.FPS,
		"size", fmt.Sprintf("%dx%d", r.req.Size.X, r.req.Size.Y),
		"dpr", r.req.DevicePixelRatio,
	)

	r.progress = progress.New(r.total, r.h)
	r.h.setProgress(r.progress)

	if err := os.MkdirAll(r.req.OutputDirectory, 0o755); err != nil {
		return fmt.Errorf("ggmovie: create output directory: %w", err)
	}
	w, err := capture.NewWriter(r.req.OutputFormat,
		capture.WithMaxPending(r.d.opts.maxPendingWrites),
		capture.WithCompletion(r.writeDone),
		capture.WithWriterLogger(r.log),
	)
	if err != nil {
		return err
	}
	r.writer = w

	owner := render.NewOwner("controller")
	r.manager = render.NewManager(r.d.opts.backend, r.log)
	if err := r.manager.Initialize(owner, r.req.Size, r.d.opts.pixelFormat); err != nil {
		return fatal(err)
	}

	r.engine = r.d.opts.newEngine(r.log)
	r.host = scene.NewHost(r.engine, r.log)
	if err := r.host.Load(r.req.SceneSource, r.req.Size); err != nil {
		return err
	}

	// Initializing -> Running
	if err := r.manager.MakeCurrent(owner); err != nil {
		return fatal(err)
	}
	target, err := r.manager.CreateFrameTarget(owner, r.req.Size, r.req.DevicePixelRatio)
	if err != nil {
		return fatal(err)
	}
	r.target = target
	if err := r.host.SetRenderTarget(target); err != nil {
		return fatal(err)
	}
	if err := r.manager.ReleaseCurrent(owner); err != nil {
		return fatal(err)
	}

	c, err := clock.New(r.req.FPS)
	if err != nil {
		return err
	}
	r.clock = c
	r.host.InstallClock(c)
	r.current = 0
	r.h.setStatus(StatusRunning)
	return nil
}

func (r *runner) Total() int { return r.total }

func (r *runner) Owner() *render.Owner { return r.manager.Owner() }

func (r *runner) Transfer(to *render.Owner) error {
	if err := r.manager.Transfer(r.manager.Owner(), to); err != nil {
		return fatal(err)
	}
	return nil
}

func (r *runner) Step(owner *render.Owner, afterSync func()) (err error) {
	if err := r.manager.MakeCurrent(owner); err != nil {
		return fatal(err)
	}
	defer func() {
		if rerr := r.manager.ReleaseCurrent(owner); rerr != nil && err == nil {
			err = fatal(rerr)
		}
	}()

	err = r.host.RenderStep(scene.StepHooks{
		Current:   func() error { return r.manager.RequireCurrent(owner) },
		AfterSync: afterSync,
		Flush:     func() error { return r.manager.Flush(owner) },
	})
	if err != nil {
		return fatal(err)
	}

	img, err := capture.Capture(r.target)
	if err != nil {
		return fatal(err)
	}

	index := r.current + 1
	f := capture.Frame{
		Index: index,
		Path:  capture.FramePath(r.req.OutputDirectory, r.req.OutputName, index, r.req.OutputFormat),
		Image: img,
	}
	if err := r.writer.ScheduleWrite(r.ctx, f); err != nil {
		return fmt.Errorf("ggmovie: schedule frame %d: %w", index, err)
	}

	r.current = index
	r.h.setCurrent(index)
	r.progress.FrameRendered()
	r.log.Debug("frame rendered", "frame", index, "of", r.total)
	return nil
}

func (r *runner) Advance() {
	r.clock.Advance()
}

func (r *runner) writeDone(capture.Result) {
	r.progress.WriteCompleted()
}

// Finish runs Running -> Cleanup and, once every scheduled write has
// completed, Cleanup -> Finished or Failed.
func (r *runner) Finish(err error) {
	r.h.setStatus(StatusCleanup)
	r.cleanup()
	go r.complete(err)
}

// cleanup releases the graphics resources. It is safe after a partial
// initialize.
func (r *runner) cleanup() {
	if r.host != nil {
		r.host.UninstallClock()
		_ = r.host.SetRenderTarget(nil)
	}
	if r.manager == nil {
		return
	}
	if owner := r.manager.Owner(); owner != nil {
		_ = r.manager.ReleaseCurrent(owner)
		if err := r.manager.DestroyFrameTarget(owner); err != nil {
			r.log.Warn("destroy frame target", "error", err)
		}
	}
	r.manager.Destroy()
	r.target = nil
}

func (r *runner) complete(err error) {
	if r.writer != nil {
		r.writer.Wait()
	}
	report := r.report()

	if err != nil {
		report.Status = StatusFailed
		r.log.Error("render job failed", "error", err, "fatal", IsFatal(err), "rendered", report.Rendered)
		r.d.release(r.h, err)
		r.h.fail(report, err)
		return
	}

	if r.total == 0 {
		r.progress.Complete()
	}
	report.Status = StatusFinished
	r.log.Info("render job finished",
		"frames", report.Rendered,
		"written", report.Written,
		"failed", report.Failed,
		"wall", report.Wall.Round(time.Millisecond),
	)
	r.d.release(r.h, nil)
	r.h.finish(report)
}

func (r *runner) report() Report {
	rep := Report{
		JobID:       r.h.job.ID,
		TotalFrames: r.total,
		Rendered:    r.current,
		Wall:        time.Since(r.start),
	}
	if r.writer != nil {
		rep.Written = r.writer.Written()
		rep.Failed = r.writer.Failed()
		rep.Bytes = r.writer.Bytes()
		rep.WriteErrors = r.writer.Errors()
	}
	if r.clock != nil {
		rep.Elapsed = r.clock.ElapsedDuration()
	}
	return rep
}
