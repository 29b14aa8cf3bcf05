package localfs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

const archiveFolderName = "_originals"

// Organizer manages the on-disk category folder structure. It never
// overwrites an existing file: destination and archive paths are made unique
// with a counter suffix. Single-writer: concurrent processes against the
// same base folder are out of contract.
type Organizer struct {
	baseFolder    string
	categories    *domain.CategorySet
	keepOriginals bool
	logger        *slog.Logger
	now           func() time.Time
}

func New(baseFolder string, categories *domain.CategorySet, keepOriginals bool, logger *slog.Logger) *Organizer {
	if baseFolder == "" {
		baseFolder = "./data/screenshots"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Organizer{
		baseFolder:    baseFolder,
		categories:    categories,
		keepOriginals: keepOriginals,
		logger:        logger,
		now:           time.Now,
	}
}

func (o *Organizer) BaseFolder() string { return o.baseFolder }

func (o *Organizer) CategoryPath(category string) string {
	return filepath.Join(o.baseFolder, category)
}

// Organize places sourcePath into the category folder under a sanitized,
// timestamped, collision-free name. Missing source and I/O failures are
// reported in the result, never raised, so batch runs continue.
func (o *Organizer) Organize(_ context.Context, sourcePath, category, suggestedName string) domain.OrganizeResult {
	result := domain.OrganizeResult{OriginalPath: sourcePath}

	if _, err := os.Stat(sourcePath); err != nil {
		result.Error = fmt.Sprintf("source file not found: %s", sourcePath)
		o.logger.Error("organize failed", "error", result.Error)
		return result
	}

	if !o.categories.Contains(category) {
		o.logger.Warn("invalid category, coercing",
			"category", category, "fallback", domain.DefaultCategory)
		category = domain.DefaultCategory
	}

	if err := o.ensureFolderStructure(); err != nil {
		result.Error = fmt.Sprintf("create folder structure: %v", err)
		o.logger.Error("organize failed", "error", result.Error)
		return result
	}

	ext := filepath.Ext(sourcePath)
	base := suggestedName
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(sourcePath), ext)
	}
	filename := o.safeFilename(base, ext)

	destination := uniquePath(filepath.Join(o.baseFolder, category, filename))

	if o.keepOriginals {
		archivePath := uniquePath(filepath.Join(o.baseFolder, archiveFolderName, filepath.Base(sourcePath)))
		if err := copyFile(sourcePath, archivePath); err != nil {
			result.Error = fmt.Sprintf("archive original: %v", err)
			o.logger.Error("organize failed", "error", result.Error)
			return result
		}
		result.Archived = true
		o.logger.Debug("archived original", "archive_path", archivePath)

		if err := copyFile(sourcePath, destination); err != nil {
			result.Error = fmt.Sprintf("copy to destination: %v", err)
			o.logger.Error("organize failed", "error", result.Error)
			return result
		}
	} else {
		if err := moveFile(sourcePath, destination); err != nil {
			result.Error = fmt.Sprintf("move to destination: %v", err)
			o.logger.Error("organize failed", "error", result.Error)
			return result
		}
	}

	result.Success = true
	result.DestinationPath = destination
	o.logger.Info("organized file",
		"source", filepath.Base(sourcePath),
		"category", category,
		"destination", filepath.Base(destination),
		"archived", result.Archived)
	return result
}

// EnsureCategoryFolder creates a single category folder, idempotently.
// An empty baseDir means the organizer's configured base folder.
func (o *Organizer) EnsureCategoryFolder(category, baseDir string) (string, bool, error) {
	if baseDir == "" {
		baseDir = o.baseFolder
	}
	path := filepath.Join(baseDir, category)

	if _, err := os.Stat(path); err == nil {
		o.logger.Debug("category folder already exists", "path", path)
		return path, false, nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", false, fmt.Errorf("create category folder: %w", err)
	}
	o.logger.Info("created category folder", "path", path)
	return path, true, nil
}

// Move copies or moves sourcePath into destFolder, optionally under a new
// basename (original extension preserved). The destination is made unique
// before writing.
func (o *Organizer) Move(_ context.Context, sourcePath, destFolder, newFilename string, keepOriginal bool) domain.OrganizeResult {
	result := domain.OrganizeResult{OriginalPath: sourcePath}

	filename := filepath.Base(sourcePath)
	if newFilename != "" {
		filename = newFilename + filepath.Ext(sourcePath)
	}
	destination := uniquePath(filepath.Join(destFolder, filename))

	var err error
	if keepOriginal {
		err = copyFile(sourcePath, destination)
	} else {
		err = moveFile(sourcePath, destination)
	}
	if err != nil {
		result.Error = err.Error()
		o.logger.Error("move failed", "source", sourcePath, "destination", destination, "error", err)
		return result
	}

	result.Success = true
	result.DestinationPath = destination
	o.logger.Info("moved file",
		"source", filepath.Base(sourcePath),
		"destination", destination,
		"copy", keepOriginal)
	return result
}

// Statistics counts regular files directly under each category folder.
// Files placed by other writers are counted too.
func (o *Organizer) Statistics() (map[string]int, error) {
	stats := make(map[string]int)
	for _, category := range o.categories.Names() {
		entries, err := os.ReadDir(o.CategoryPath(category))
		if err != nil {
			if os.IsNotExist(err) {
				stats[category] = 0
				continue
			}
			return nil, fmt.Errorf("read category folder %s: %w", category, err)
		}
		count := 0
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				count++
			}
		}
		stats[category] = count
	}
	return stats, nil
}

func (o *Organizer) ensureFolderStructure() error {
	if err := os.MkdirAll(o.baseFolder, 0o755); err != nil {
		return fmt.Errorf("create base folder: %w", err)
	}
	for _, category := range o.categories.Names() {
		if err := os.MkdirAll(o.CategoryPath(category), 0o755); err != nil {
			return fmt.Errorf("create category folder %s: %w", category, err)
		}
	}
	if o.keepOriginals {
		if err := os.MkdirAll(filepath.Join(o.baseFolder, archiveFolderName), 0o755); err != nil {
			return fmt.Errorf("create archive folder: %w", err)
		}
	}
	return nil
}

const maxBaseNameLen = 50

var (
	unsafeChars   = regexp.MustCompile(`[^\w\s-]`)
	separatorRuns = regexp.MustCompile(`[-\s]+`)
)

// safeFilename sanitizes a suggested base name and appends a timestamp plus
// the original extension.
func (o *Organizer) safeFilename(suggested, ext string) string {
	name := unsafeChars.ReplaceAllString(suggested, "")
	name = separatorRuns.ReplaceAllString(name, "_")
	name = strings.ToLower(strings.Trim(name, "_"))

	if len(name) > maxBaseNameLen {
		name = name[:maxBaseNameLen]
	}
	if name == "" {
		name = "screenshot"
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name + "_" + o.now().Format("20060102_150405") + ext
}

// uniquePath appends _1, _2, ... until the path does not exist.
func uniquePath(target string) string {
	if _, err := os.Stat(target); os.IsNotExist(err) {
		return target
	}

	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func copyFile(source, destination string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}

	// Preserve the original modification time.
	return os.Chtimes(destination, info.ModTime(), info.ModTime())
}

// moveFile renames when possible and falls back to copy+remove across
// filesystems.
func moveFile(source, destination string) error {
	if err := os.Rename(source, destination); err == nil {
		return nil
	}
	if err := copyFile(source, destination); err != nil {
		return err
	}
	return os.Remove(source)
}
