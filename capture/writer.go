// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/semaphore"
)

var errNoImage = errors.New("no image")

// WriteError reports a frame that could not be written.
type WriteError struct {
	Index int
	Path  string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("capture: write frame %d (%s): %v", e.Index, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Result is delivered once per scheduled frame when its write completes.
type Result struct {
	Index int
	Path  string
	Bytes int64
	Err   *WriteError
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithMaxPending bounds the number of writes in flight. Values below one
// select 2*GOMAXPROCS.
func WithMaxPending(n int) WriterOption {
	return func(w *Writer) {
		w.maxPending = n
	}
}

// WithCompletion sets a callback run after every write. It is called from
// the writing goroutine, possibly concurrently and out of frame order.
func WithCompletion(fn func(Result)) WriterOption {
	return func(w *Writer) {
		w.onDone = fn
	}
}

// WithWriterLogger sets the logger.
func WithWriterLogger(l *slog.Logger) WriterOption {
	return func(w *Writer) {
		if l != nil {
			w.log = l
		}
	}
}

// Writer encodes and persists frames concurrently.
//
// Files are written to a temporary file in the destination directory,
// synced and renamed into place, so a frame path either holds a complete
// image or does not exist.
type Writer struct {
	encode     Encoder
	maxPending int
	onDone     func(Result)
	log        *slog.Logger

	sem *semaphore.Weighted
	wg  sync.WaitGroup

	written atomic.Int64
	failed  atomic.Int64
	bytes   atomic.Int64

	mu   sync.Mutex
	errs []*WriteError
}

// NewWriter returns a Writer encoding frames as format.
func NewWriter(format string, opts ...WriterOption) (*Writer, error) {
	enc, err := EncoderFor(format)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		encode: enc,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.maxPending < 1 {
		w.maxPending = 2 * runtime.GOMAXPROCS(0)
	}
	w.sem = semaphore.NewWeighted(int64(w.maxPending))
	return w, nil
}

// MaxPending returns the bound on writes in flight.
func (w *Writer) MaxPending() int {
	return w.maxPending
}

// ScheduleWrite starts writing f in the background. It blocks while
// MaxPending writes are outstanding and returns ctx.Err() if ctx ends
// first, in which case the frame is not written.
func (w *Writer) ScheduleWrite(ctx context.Context, f Frame) error {
	if err := w.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.sem.Release(1)
		w.complete(w.write(f))
	}()
	return nil
}

// Wait blocks until every scheduled write has completed.
func (w *Writer) Wait() {
	w.wg.Wait()
}

// Written returns the number of frames written successfully.
func (w *Writer) Written() int { return int(w.written.Load()) }

// Failed returns the number of frames that could not be written.
func (w *Writer) Failed() int { return int(w.failed.Load()) }

// Completed returns Written plus Failed.
func (w *Writer) Completed() int { return w.Written() + w.Failed() }

// Bytes returns the total size of the files written.
func (w *Writer) Bytes() int64 { return w.bytes.Load() }

// Errors returns the write failures ordered by frame index.
func (w *Writer) Errors() []*WriteError {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := make([]*WriteError, len(w.errs))
	copy(errs, w.errs)
	sort.Slice(errs, func(i, j int) bool { return errs[i].Index < errs[j].Index })
	return errs
}

func (w *Writer) complete(res Result) {
	if res.Err != nil {
		w.mu.Lock()
		w.errs = append(w.errs, res.Err)
		w.mu.Unlock()
		w.failed.Add(1)
		w.log.Warn("frame write failed", "frame", res.Index, "path", res.Path, "error", res.Err.Err)
	} else {
		w.written.Add(1)
		w.bytes.Add(res.Bytes)
		w.log.Debug("frame written", "frame", res.Index, "path", res.Path, "size", humanize.Bytes(uint64(res.Bytes)))
	}
	if w.onDone != nil {
		w.onDone(res)
	}
}

func (w *Writer) write(f Frame) Result {
	res := Result{Index: f.Index, Path: f.Path}
	n, err := w.writeFile(f)
	if err != nil {
		res.Err = &WriteError{Index: f.Index, Path: f.Path, Err: err}
		return res
	}
	res.Bytes = n
	return res
}

func (w *Writer) writeFile(f Frame) (n int64, err error) {
	if f.Image == nil {
		return 0, errNoImage
	}
	dir, base := filepath.Split(f.Path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	cw := &countingWriter{w: tmp}
	bw := bufio.NewWriter(cw)
	if err = w.encode(bw, f.Image); err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}
	if err = bw.Flush(); err != nil {
		return 0, err
	}
	if err = tmp.Sync(); err != nil {
		return 0, err
	}
	if err = tmp.Close(); err != nil {
		return 0, err
	}
	if err = os.Rename(tmp.Name(), f.Path); err != nil {
		return 0, err
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
