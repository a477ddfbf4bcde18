package xrhost

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/xrhost/resources"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine,
// including the render loop and background lifecycle tasks.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for xrhost and all its sub-packages.
// By default, xrhost produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by xrhost:
//   - [slog.LevelDebug]: per-frame diagnostics (resource reconciliation,
//     present results)
//   - [slog.LevelInfo]: lifecycle events (display attached, suspend,
//     device restored)
//   - [slog.LevelWarn]: non-fatal issues (persistence failure, suspend
//     budget exceeded, device loss)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	xrhost.SetLogger(slog.Default())
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// The resources package logs from both the render thread and
	// background lifecycle tasks; keep it on the same logger.
	resources.SetLogger(l)
}

// Logger returns the current logger used by xrhost.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
