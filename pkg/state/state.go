// Package state owns the runtime filesystem layout under the DB path:
// the Pebble store plus state/ subfolders for audit logs, retention
// artifacts, crash dumps and abort requests.
package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the canonical folder layout under dbPath.
type Paths struct {
	Store     string
	Audit     string
	Retention string
	Crash     string
	Abort     string
	Tmp       string
}

// Layout returns the folder layout for dbPath without touching the
// filesystem.
func Layout(dbPath string) Paths {
	statePath := filepath.Join(dbPath, "state")
	return Paths{
		Store:     filepath.Join(dbPath, "store"),
		Audit:     filepath.Join(statePath, "audit"),
		Retention: filepath.Join(statePath, "retention"),
		Crash:     filepath.Join(statePath, "crash"),
		Abort:     filepath.Join(statePath, "abort"),
		Tmp:       filepath.Join(statePath, "tmp"),
	}
}

// EnsureStateDirs ensures the canonical runtime folder layout exists under
// the provided DB path. It verifies paths are not symlinks and have
// restrictive permissions, and that they are writable by the process.
func EnsureStateDirs(dbPath string) (Paths, error) {
	p := Layout(dbPath)
	dirs := []string{p.Store, p.Audit, p.Retention, p.Crash, p.Abort, p.Tmp}

	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Dir(d), 0o700); err != nil {
			return p, fmt.Errorf("cannot create parent for %s: %w", d, err)
		}

		// if path exists, reject symlinks and non-directories
		if fi, err := os.Lstat(d); err == nil {
			if fi.Mode()&os.ModeSymlink != 0 {
				return p, fmt.Errorf("path is a symlink: %s", d)
			}
			if !fi.IsDir() {
				return p, fmt.Errorf("path exists and is not a directory: %s", d)
			}
			if fi.Mode().Perm()&0o022 != 0 {
				return p, fmt.Errorf("path has permissive mode (group/other write): %s", d)
			}
		}

		if err := os.MkdirAll(d, 0o700); err != nil {
			return p, fmt.Errorf("cannot create path %s: %w", d, err)
		}

		// double-check no symlink appeared between Lstat and MkdirAll
		if fi2, err := os.Lstat(d); err == nil {
			if fi2.Mode()&os.ModeSymlink != 0 {
				return p, fmt.Errorf("path is a symlink after creation: %s", d)
			}
			if fi2.Mode().Perm()&0o022 != 0 {
				return p, fmt.Errorf("path has permissive mode after creation: %s", d)
			}
		}

		// writability check: create and remove a temp file
		tmp, err := os.CreateTemp(d, ".validate-*")
		if err != nil {
			return p, fmt.Errorf("path not writable: %s: %w", d, err)
		}
		tmp.Close()
		_ = os.Remove(tmp.Name())
	}

	return p, nil
}
