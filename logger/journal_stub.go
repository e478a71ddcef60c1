// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux

package logger

import "log/slog"

func newJournalHandler() (slog.Handler, bool) {
	return nil, false
}
