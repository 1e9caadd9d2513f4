// Package testutil holds test helpers shared across packages, chiefly a
// capturing slog handler for asserting on pipeline log output.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Record is a captured log record.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler is a slog.Handler that records everything it is handed.
// Safe for concurrent use.
type CaptureHandler struct {
	mu      sync.Mutex
	records []Record
	t       *testing.T
}

// NewLogger returns a logger whose output is captured for assertions.
// Records are also echoed through t.Logf for failed-test debugging.
func NewLogger(t *testing.T) (*slog.Logger, *CaptureHandler) {
	h := &CaptureHandler{t: t}
	return slog.New(h), h
}

func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	h.records = append(h.records, Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	h.mu.Unlock()

	if h.t != nil {
		h.t.Logf("[%s] %s %v", r.Level, r.Message, attrs)
	}
	return nil
}

func (h *CaptureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

// WithAttrs and WithGroup return the handler unchanged: captured records
// keep only their own attrs, which is enough for the assertions below.
func (h *CaptureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *CaptureHandler) WithGroup(_ string) slog.Handler      { return h }

// Records returns a copy of everything captured so far.
func (h *CaptureHandler) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Contains reports whether any record at the given level contains message
// as a substring.
func (h *CaptureHandler) Contains(level slog.Level, message string) bool {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// AssertContains fails the test when no record at the given level
// contains message as a substring.
func AssertContains(t *testing.T, h *CaptureHandler, level slog.Level, message string) {
	t.Helper()
	if h.Contains(level, message) {
		return
	}
	t.Errorf("expected a %s log containing %q", level, message)
	for _, r := range h.Records() {
		if r.Level == level {
			t.Logf("  captured: %s", r.Message)
		}
	}
}

// AssertNoErrors fails the test when any error-level record was captured.
func AssertNoErrors(t *testing.T, h *CaptureHandler) {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level == slog.LevelError {
			t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
		}
	}
}
