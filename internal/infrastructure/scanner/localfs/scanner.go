package localfs

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

// Scanner enumerates regular files whose extension is in the configured
// allow-list. Records are point-in-time snapshots; nothing is locked between
// scan and use.
type Scanner struct {
	extensions map[string]bool
	logger     *slog.Logger
}

func New(extensions []string, logger *slog.Logger) *Scanner {
	if len(extensions) == 0 {
		extensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	allow := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allow[strings.ToLower(ext)] = true
	}
	return &Scanner{extensions: allow, logger: logger}
}

// Scan lists qualifying files in stable (lexical walk) order. A missing or
// non-directory folder yields an empty list and a typed error; callers at
// the batch level treat the root as inaccessible, the scan-only path logs
// and carries on with nothing.
func (s *Scanner) Scan(folder string, recursive bool) ([]domain.FileRecord, error) {
	info, err := os.Stat(folder)
	if err != nil {
		s.logger.Error("scan folder not found", "folder", folder)
		return nil, domain.WrapError(domain.ErrDirectoryNotFound, "scan folder", err)
	}
	if !info.IsDir() {
		s.logger.Error("scan target is not a directory", "folder", folder)
		return nil, domain.WrapError(domain.ErrDirectoryNotFound, "scan folder",
			&fs.PathError{Op: "scan", Path: folder, Err: fs.ErrInvalid})
	}

	var files []domain.FileRecord
	walkErr := filepath.WalkDir(folder, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if entry.IsDir() {
			if !recursive && path != folder {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if !s.extensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		fileInfo, err := entry.Info()
		if err != nil {
			s.logger.Warn("failed to stat file", "path", path, "error", err)
			return nil
		}
		files = append(files, domain.FileRecord{
			Path:         path,
			Filename:     entry.Name(),
			SizeBytes:    fileInfo.Size(),
			ModifiedTime: fileInfo.ModTime(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, domain.WrapError(domain.ErrDirectoryNotFound, "walk folder", walkErr)
	}

	s.logger.Info("scan complete", "folder", folder, "recursive", recursive, "found", len(files))
	return files, nil
}

// FilterBySize drops files outside [minKB, maxKB]; zero bounds are ignored.
func (s *Scanner) FilterBySize(files []domain.FileRecord, minKB, maxKB int) []domain.FileRecord {
	filtered := make([]domain.FileRecord, 0, len(files))
	for _, f := range files {
		sizeKB := float64(f.SizeBytes) / 1024

		if minKB > 0 && sizeKB < float64(minKB) {
			s.logger.Debug("skipping file below size bound", "file", f.Filename, "size_kb", sizeKB)
			continue
		}
		if maxKB > 0 && sizeKB > float64(maxKB) {
			s.logger.Debug("skipping file above size bound", "file", f.Filename, "size_kb", sizeKB)
			continue
		}
		filtered = append(filtered, f)
	}
	s.logger.Info("size filter applied", "before", len(files), "after", len(filtered))
	return filtered
}
