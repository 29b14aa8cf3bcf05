package mcpadapter

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

// macOS inserts a narrow no-break space before AM/PM in screenshot filenames;
// callers routinely paste it as a regular space, and vice versa.
var (
	spaceBeforeMeridiem = regexp.MustCompile(` (AM|PM)`)
	nnbspBeforeMeridiem = regexp.MustCompile("\u202f(AM|PM)")
)

// normalizePath undoes shell escaping of spaces in path arguments.
func normalizePath(path string) string {
	return strings.ReplaceAll(path, `\ `, " ")
}

// candidatePaths returns the normalized path plus its AM/PM spelling
// variants. Only the filename component is rewritten.
func candidatePaths(path string) []string {
	normalized := normalizePath(path)
	candidates := []string{normalized}

	dir, name := filepath.Split(normalized)
	if variant := spaceBeforeMeridiem.ReplaceAllString(name, "\u202f$1"); variant != name {
		candidates = append(candidates, filepath.Join(dir, variant))
	}
	if variant := nnbspBeforeMeridiem.ReplaceAllString(name, " $1"); variant != name {
		candidates = append(candidates, filepath.Join(dir, variant))
	}
	return candidates
}

// resolveFile locates an existing regular file among the candidate spellings
// of path. Returns domain.ErrFileNotFound when none exists.
func resolveFile(path string) (string, error) {
	for _, candidate := range candidatePaths(path) {
		info, err := os.Stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("resolve path %s: %w", normalizePath(path), domain.ErrFileNotFound)
}

// resolveDir locates an existing directory among the candidate spellings of
// path. Returns domain.ErrDirectoryNotFound when none exists.
func resolveDir(path string) (string, error) {
	for _, candidate := range candidatePaths(path) {
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("resolve directory %s: %w", normalizePath(path), domain.ErrDirectoryNotFound)
}
