// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resources

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards all log records; Enabled returns false so callers
// skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger configures the logger for the resources package.
// xrhost.SetLogger propagates here; most code should call that instead.
// Pass nil to restore the default silent behavior.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// logger returns the current package logger.
func logger() *slog.Logger {
	return loggerPtr.Load()
}
