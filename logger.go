package ggmovie

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gg"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the package logger. Drivers created without WithLogger
// read it when they are constructed.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the default logger for ggmovie and the gg
// rasterizer. By default nothing is logged. Pass nil to restore silence.
//
// Log levels used by ggmovie:
//   - [slog.LevelDebug]: per-frame events (frame rendered, frame written)
//   - [slog.LevelInfo]: job lifecycle and graphics ownership transfers
//   - [slog.LevelWarn]: scene load and frame write failures
//   - [slog.LevelError]: failed jobs
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	gg.SetLogger(l)
}

// Logger returns the default logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
