// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package progress tracks render and write progress of a movie job as
// monotonically non-decreasing percentages.
package progress

import (
	"sync"
	"sync/atomic"
)

// Sink receives progress changes. Calls are serialized and each value is
// greater than the previous one of the same kind. A Sink must not call
// back into the Reporter's locking methods.
type Sink interface {
	RenderProgress(pct int)
	WriteProgress(pct int)
}

// Reporter counts rendered frames and completed writes against a total.
//
// FrameRendered is called from the render loop and WriteCompleted from
// writer goroutines; both may run concurrently.
type Reporter struct {
	sink Sink

	mu       sync.Mutex
	total    int
	rendered int
	written  int

	renderPct atomic.Int32
	writePct  atomic.Int32
}

// New returns a Reporter for total frames. A nil sink only records.
func New(total int, sink Sink) *Reporter {
	return &Reporter{total: max(total, 0), sink: sink}
}

// Total returns the number of frames tracked.
func (r *Reporter) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Reset starts over with a new total. Both percentages return to zero.
func (r *Reporter) Reset(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = max(total, 0)
	r.rendered = 0
	r.written = 0
	r.renderPct.Store(0)
	r.writePct.Store(0)
}

// FrameRendered records one rendered frame.
func (r *Reporter) FrameRendered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rendered < r.total {
		r.rendered++
	}
	r.emitRender(percent(r.rendered, r.total))
}

// WriteCompleted records one finished write, successful or not.
func (r *Reporter) WriteCompleted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.written < r.total {
		r.written++
	}
	r.emitWrite(percent(r.written, r.total))
}

// Complete raises both percentages to 100. A job with no frames finishes
// through Complete alone.
func (r *Reporter) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = r.total
	r.written = r.total
	r.emitRender(100)
	r.emitWrite(100)
}

// Render returns the render percentage.
func (r *Reporter) Render() int { return int(r.renderPct.Load()) }

// Write returns the write percentage.
func (r *Reporter) Write() int { return int(r.writePct.Load()) }

// Rendered returns the number of frames rendered.
func (r *Reporter) Rendered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rendered
}

// Written returns the number of writes completed.
func (r *Reporter) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

func (r *Reporter) emitRender(pct int) {
	if int32(pct) <= r.renderPct.Load() {
		return
	}
	r.renderPct.Store(int32(pct))
	if r.sink != nil {
		r.sink.RenderProgress(pct)
	}
}

func (r *Reporter) emitWrite(pct int) {
	if int32(pct) <= r.writePct.Load() {
		return
	}
	r.writePct.Store(int32(pct))
	if r.sink != nil {
		r.sink.WriteProgress(pct)
	}
}

func percent(n, total int) int {
	if total <= 0 {
		return 0
	}
	return n * 100 / total
}
