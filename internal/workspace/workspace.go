// Package workspace locates the bd workspace a board session operates
// on: the .beads directory, its database, and its JSONL export. The
// board never opens these files for issue data (all reads go through
// the bd CLI); the paths matter for config discovery and for watching
// the workspace for out-of-band changes.
package workspace

import (
	"os"
	"path/filepath"
)

// Canonicalize converts a path to absolute form and resolves symlinks.
// Falls back to the best available form when either step fails.
func Canonicalize(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	canonical, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return absPath
	}
	return canonical
}

// FindBeadsDir finds the .beads directory for the current working
// directory using bd's own search order:
//  1. $BEADS_DIR environment variable
//  2. .beads/ in the current directory or any ancestor
//
// Returns empty string if no workspace is found.
func FindBeadsDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return FindBeadsDirFrom(cwd)
}

// FindBeadsDirFrom is FindBeadsDir anchored at an explicit directory.
func FindBeadsDirFrom(start string) string {
	if beadsDir := os.Getenv("BEADS_DIR"); beadsDir != "" {
		abs := Canonicalize(beadsDir)
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs
		}
	}

	for dir := Canonicalize(start); ; dir = filepath.Dir(dir) {
		beadsDir := filepath.Join(dir, ".beads")
		if info, err := os.Stat(beadsDir); err == nil && info.IsDir() {
			return beadsDir
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return ""
}

// DatabasePath returns the SQLite database inside a .beads directory,
// preferring the canonical beads.db name. Empty string when the
// workspace has no database (JSONL-only mode).
func DatabasePath(beadsDir string) string {
	if beadsDir == "" {
		return ""
	}
	matches, err := filepath.Glob(filepath.Join(beadsDir, "*.db"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	for _, match := range matches {
		if filepath.Base(match) == "beads.db" {
			return match
		}
	}
	return matches[0]
}

// JSONLPath returns the issue export file inside a .beads directory.
// Prefers issues.jsonl, falls back to beads.jsonl, and skips the
// deletions manifest and merge artifacts. Always returns a path; the
// file may not exist yet in a fresh workspace.
func JSONLPath(beadsDir string) string {
	matches, err := filepath.Glob(filepath.Join(beadsDir, "*.jsonl"))
	if err != nil || len(matches) == 0 {
		return filepath.Join(beadsDir, "issues.jsonl")
	}

	for _, match := range matches {
		if filepath.Base(match) == "issues.jsonl" {
			return match
		}
	}
	for _, match := range matches {
		if filepath.Base(match) == "beads.jsonl" {
			return match
		}
	}
	for _, match := range matches {
		base := filepath.Base(match)
		if base == "deletions.jsonl" ||
			base == "interactions.jsonl" ||
			base == "beads.base.jsonl" ||
			base == "beads.left.jsonl" ||
			base == "beads.right.jsonl" {
			continue
		}
		return match
	}
	return filepath.Join(beadsDir, "issues.jsonl")
}
