// SPDX-License-Identifier: GPL-3.0-or-later

package snapshot

import (
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// LoadAll loads every snapshot document matching the patterns, sorted by
// path. Patterns follow doublestar syntax, so "snapshots/**/*.yaml" walks
// subdirectories. A pattern without matches is not an error.
func LoadAll(patterns ...string) ([]*Snapshot, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob snapshots %q: %w", pattern, err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	snaps := make([]*Snapshot, 0, len(paths))
	for _, path := range paths {
		snap, err := Load(path)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
