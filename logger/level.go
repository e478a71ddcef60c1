// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"log/slog"
	"strings"
)

const (
	levelNotice  = slog.Level(2)
	levelDisable = slog.Level(99)
)

func isCustomLevel(lvl slog.Level) bool {
	return lvl == levelNotice
}

// levelName names lvl for plain or terminal output.
func levelName(lvl slog.Level, term bool) string {
	switch {
	case lvl == levelNotice && term:
		return "\u001B[34m" + "NTC" + "\u001B[0m"
	case lvl == levelNotice:
		return "NOTICE"
	default:
		return lvl.String()
	}
}

// Level is the process-wide minimum level shared by every handler in this package.
var Level = &level{lvl: &slog.LevelVar{}}

type level struct {
	lvl *slog.LevelVar
}

func (l *level) Enabled(level slog.Level) bool {
	return level >= l.lvl.Level()
}

func (l *level) Set(level slog.Level) {
	l.lvl.Set(level)
}

// SetByName accepts the level names used in analysis configs. Unknown names
// leave the current level untouched and report false.
func (l *level) SetByName(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "err", "error":
		l.lvl.Set(slog.LevelError)
	case "warn", "warning":
		l.lvl.Set(slog.LevelWarn)
	case "notice":
		l.lvl.Set(levelNotice)
	case "info":
		l.lvl.Set(slog.LevelInfo)
	case "debug":
		l.lvl.Set(slog.LevelDebug)
	case "off", "none", "emergency", "alert", "critical":
		l.lvl.Set(levelDisable)
	default:
		return false
	}
	return true
}
