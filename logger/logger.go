// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Logger is a leveled logger embedded by the topology and ownership components.
type Logger struct {
	muted atomic.Bool
	sl    *slog.Logger
}

// New returns a logger writing to stderr: colored on a terminal, structured
// journal entries under systemd, plain text otherwise.
func New() *Logger {
	// skip 2 slog pkg calls, 2 this pkg calls
	return &Logger{sl: slog.New(withCaller(4, newStderrHandler()))}
}

// NewWithWriter returns a plain text logger writing to w.
func NewWithWriter(w io.Writer) *Logger {
	return &Logger{sl: slog.New(withCaller(4, newTextHandler(w)))}
}

// Nop returns a logger that drops every record.
func Nop() *Logger {
	l := &Logger{sl: slog.New(slog.NewTextHandler(io.Discard, nil))}
	l.muted.Store(true)
	return l
}

func (l *Logger) Error(a ...any)   { l.log(slog.LevelError, fmt.Sprint(a...)) }
func (l *Logger) Warning(a ...any) { l.log(slog.LevelWarn, fmt.Sprint(a...)) }
func (l *Logger) Notice(a ...any)  { l.log(levelNotice, fmt.Sprint(a...)) }
func (l *Logger) Info(a ...any)    { l.log(slog.LevelInfo, fmt.Sprint(a...)) }
func (l *Logger) Debug(a ...any)   { l.log(slog.LevelDebug, fmt.Sprint(a...)) }

func (l *Logger) Errorf(format string, a ...any)   { l.log(slog.LevelError, fmt.Sprintf(format, a...)) }
func (l *Logger) Warningf(format string, a ...any) { l.log(slog.LevelWarn, fmt.Sprintf(format, a...)) }
func (l *Logger) Noticef(format string, a ...any)  { l.log(levelNotice, fmt.Sprintf(format, a...)) }
func (l *Logger) Infof(format string, a ...any)    { l.log(slog.LevelInfo, fmt.Sprintf(format, a...)) }
func (l *Logger) Debugf(format string, a ...any)   { l.log(slog.LevelDebug, fmt.Sprintf(format, a...)) }

// With returns a child logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	if l == nil || l.sl == nil {
		return l
	}
	child := &Logger{sl: l.sl.With(args...)}
	child.muted.Store(l.muted.Load())
	return child
}

func (l *Logger) Mute() {
	if l != nil {
		l.muted.Store(true)
	}
}

func (l *Logger) Unmute() {
	if l != nil {
		l.muted.Store(false)
	}
}

func (l *Logger) log(level slog.Level, msg string) {
	if l == nil || l.sl == nil || l.muted.Load() {
		return
	}
	if !Level.Enabled(level) {
		return
	}
	l.sl.Log(context.Background(), level, msg)
}
