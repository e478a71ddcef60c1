// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// newStderrHandler picks the stderr handler: colored for a terminal, the
// journal when running under systemd, plain text otherwise.
func newStderrHandler() slog.Handler {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return newTerminalHandler(os.Stderr)
	}
	if h, ok := newJournalHandler(); ok {
		return h
	}
	return newTextHandler(os.Stderr)
}

func newTextHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: Level.lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				return slog.String(a.Key, strings.ToLower(levelName(a.Value.Any().(slog.Level), false)))
			}
			return a
		},
	})
}

func newTerminalHandler(w io.Writer) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		NoColor:   runtime.GOOS == "windows",
		AddSource: true,
		Level:     Level.lvl,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.SourceKey:
				if !Level.Enabled(slog.LevelDebug) {
					return slog.Attr{}
				}
			case slog.LevelKey:
				if lvl := a.Value.Any().(slog.Level); isCustomLevel(lvl) {
					return slog.String(a.Key, levelName(lvl, true))
				}
			}
			return a
		},
	})
}

// callerHandler points each record at the caller skip frames above Handle,
// so source locations name the component rather than this package.
type callerHandler struct {
	slog.Handler
	skip int
}

func withCaller(skip int, h slog.Handler) slog.Handler {
	if c, ok := h.(*callerHandler); ok {
		h = c.Handler
	}
	return &callerHandler{Handler: h, skip: skip}
}

func (h *callerHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return withCaller(h.skip, h.Handler.WithAttrs(attrs))
}

func (h *callerHandler) WithGroup(name string) slog.Handler {
	return withCaller(h.skip, h.Handler.WithGroup(name))
}

func (h *callerHandler) Handle(ctx context.Context, r slog.Record) error {
	var pcs [1]uintptr
	runtime.Callers(h.skip+2, pcs[:])
	r.PC = pcs[0]
	return h.Handler.Handle(ctx, r)
}
