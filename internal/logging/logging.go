// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging configures the slog logger used by hb and carries it
// through context.Context.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type loggerKey struct{}

// New returns a logger writing to w. format is "json" or "text" (default).
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

const (
	ansiYellow = "\033[33m"
	ansiReset  = "\033[0m"
)

// Warner prints user-facing warnings, coloured when writing to a terminal.
type Warner struct {
	out   io.Writer
	color bool
}

// NewWarner returns a Warner for out. Colour is enabled when out is a
// terminal file descriptor.
func NewWarner(out io.Writer) *Warner {
	if out == nil {
		out = os.Stderr
	}
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Warner{out: out, color: color}
}

// Warnf writes one warning line.
func (w *Warner) Warnf(format string, args ...any) {
	if w == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if w.color {
		fmt.Fprintf(w.out, "%s[OHOS WARNING]%s %s\n", ansiYellow, ansiReset, msg)
		return
	}
	fmt.Fprintf(w.out, "[OHOS WARNING] %s\n", msg)
}
