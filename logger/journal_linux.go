// SPDX-License-Identifier: GPL-3.0-or-later

//go:build linux

package logger

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// newJournalHandler returns a handler that sends records to journald as
// structured entries. It reports false unless stderr is the journal stream
// and the journal socket is reachable.
func newJournalHandler() (slog.Handler, bool) {
	if ok, err := journal.StderrIsJournalStream(); err != nil || !ok {
		return nil, false
	}
	if !journal.Enabled() {
		return nil, false
	}
	return &journalHandler{}, true
}

type journalHandler struct {
	prefix string
	fields map[string]string
}

func (h *journalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return Level.Enabled(level)
}

func (h *journalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := &journalHandler{prefix: h.prefix, fields: make(map[string]string, len(h.fields)+len(attrs))}
	for k, v := range h.fields {
		child.fields[k] = v
	}
	for _, a := range attrs {
		addJournalField(child.fields, h.prefix, a)
	}
	return child
}

func (h *journalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &journalHandler{prefix: h.prefix + name + "_", fields: h.fields}
}

func (h *journalHandler) Handle(_ context.Context, r slog.Record) error {
	vars := make(map[string]string, len(h.fields)+r.NumAttrs()+3)
	for k, v := range h.fields {
		vars[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		addJournalField(vars, h.prefix, a)
		return true
	})
	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		vars["CODE_FILE"] = frame.File
		vars["CODE_LINE"] = strconv.Itoa(frame.Line)
		vars["CODE_FUNC"] = frame.Function
	}
	return journal.Send(r.Message, journalPriority(r.Level), vars)
}

func addJournalField(vars map[string]string, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			addJournalField(vars, prefix+a.Key+"_", ga)
		}
		return
	}
	if name := journalFieldName(prefix + a.Key); name != "" {
		vars[name] = a.Value.String()
	}
}

// journalFieldName maps an attribute key onto the journal field alphabet:
// uppercase letters, digits and underscores, not starting with an underscore.
func journalFieldName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, key)
	return strings.TrimLeft(name, "_")
}

func journalPriority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= levelNotice:
		return journal.PriNotice
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}
