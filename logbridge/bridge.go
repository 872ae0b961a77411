// Package logbridge forwards slog records to a tracking run as
// console-output metric records.
//
// Each record is formatted as "LEVEL: message key=value ..." and sent with a
// strictly increasing step, starting at 1. Delivery is best effort: a failed
// send is reported on a fallback writer and never reaches the logging call
// site.
package logbridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gcharanteja/unilogger/tracker"
)

// Options configures a bridge.
type Options struct {
	// Level is the minimum level forwarded to the run. Defaults to
	// slog.LevelInfo.
	Level slog.Leveler
	// Console additionally writes records to a local text handler.
	Console bool
	// ConsoleWriter receives console output when Console is set. Defaults
	// to os.Stdout.
	ConsoleWriter io.Writer
	// ErrorWriter receives one diagnostic line per dropped record.
	// Defaults to os.Stderr.
	ErrorWriter io.Writer
}

// Handler is a slog.Handler that records each log line against one run.
// Clones made by WithAttrs and WithGroup share the step counter, so steps
// stay unique and increasing across the whole bridge.
type Handler struct {
	run    *tracker.Run
	level  slog.Leveler
	errw   io.Writer
	step   *atomic.Int64
	prefix string   // formatted attrs from WithAttrs
	groups []string // open groups, applied to record attrs
}

// NewHandler creates a bridge handler for run.
func NewHandler(run *tracker.Run, opts Options) *Handler {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	errw := opts.ErrorWriter
	if errw == nil {
		errw = os.Stderr
	}
	return &Handler{
		run:   run,
		level: level,
		errw:  errw,
		step:  &atomic.Int64{},
	}
}

// New creates a logger that forwards records to run, optionally teeing them
// to a local console handler.
func New(run *tracker.Run, opts Options) *slog.Logger {
	bridge := NewHandler(run, opts)
	if !opts.Console {
		return slog.New(bridge)
	}
	w := opts.ConsoleWriter
	if w == nil {
		w = os.Stdout
	}
	console := slog.NewTextHandler(w, &slog.HandlerOptions{Level: bridge.level})
	return slog.New(newFanout(bridge, console))
}

// Enabled reports whether records at level are forwarded.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats the record and sends it to the run. Send failures are
// written to the fallback writer and swallowed; logging must never take the
// host program down.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	line := h.format(rec)
	step := h.step.Add(1)
	if _, err := h.run.LogMessage(ctx, line, step); err != nil {
		fmt.Fprintf(h.errw, "unilogger: dropped log record (step %d): %v\n", step, err)
	}
	return nil
}

// WithAttrs returns a handler that includes attrs in every record. The clone
// shares the receiver's step counter.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		appendAttr(&b, h.groups, a)
	}
	clone.prefix = b.String()
	return &clone
}

// WithGroup returns a handler that qualifies subsequent attr keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *Handler) format(rec slog.Record) string {
	var b strings.Builder
	b.WriteString(rec.Level.String())
	b.WriteString(": ")
	b.WriteString(rec.Message)
	b.WriteString(h.prefix)
	rec.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.groups, a)
		return true
	})
	return b.String()
}

func appendAttr(b *strings.Builder, groups []string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value)
}
