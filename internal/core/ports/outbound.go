package ports

import (
	"context"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

// TextExtractor derives machine-readable text from a screenshot image (OCR
// capability). Implementations return domain.ErrExtraction when the image
// cannot be decoded.
type TextExtractor interface {
	Extract(ctx context.Context, imagePath string) (domain.Extraction, error)
}

// ContentDescriber produces a description and classification hint from a
// screenshot image (vision capability). Markedly slower than extraction and
// possibly metered; callers invoke it only when extraction is insufficient
// or explicitly forced.
type ContentDescriber interface {
	Describe(ctx context.Context, imagePath string) (domain.Description, error)
}

// TextClassifier maps extracted text to a category. AddPattern is not safe
// to call concurrently with in-flight Classify calls.
type TextClassifier interface {
	Classify(text string) string
	Evaluate(text string) domain.ClassifierMatch
	AddPattern(category, pattern string) error
}

// ScreenshotScanner enumerates qualifying image files under a directory.
type ScreenshotScanner interface {
	Scan(folder string, recursive bool) ([]domain.FileRecord, error)
	FilterBySize(files []domain.FileRecord, minKB, maxKB int) []domain.FileRecord
}

// FileOrganizer places analyzed screenshots into category folders without
// ever overwriting an existing file.
type FileOrganizer interface {
	Organize(ctx context.Context, sourcePath, category, suggestedName string) domain.OrganizeResult
	EnsureCategoryFolder(category, baseDir string) (path string, created bool, err error)
	Move(ctx context.Context, sourcePath, destFolder, newFilename string, keepOriginal bool) domain.OrganizeResult
	Statistics() (map[string]int, error)
}
