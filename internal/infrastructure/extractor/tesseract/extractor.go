package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

// Extractor shells out to the tesseract binary for OCR. The engine process
// is spawned per call; warm-up cost is the engine's, not ours.
type Extractor struct {
	binary   string
	language string
	minWords int
	logger   *slog.Logger
}

func NewExtractor(binary, language string, minWords int, logger *slog.Logger) *Extractor {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	if minWords <= 0 {
		minWords = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		binary:   binary,
		language: language,
		minWords: minWords,
		logger:   logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, imagePath string) (domain.Extraction, error) {
	if _, err := os.Stat(imagePath); err != nil {
		return domain.Extraction{}, domain.WrapError(domain.ErrFileNotFound, "stat image", err)
	}

	start := time.Now()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, imagePath, "stdout", "-l", e.language)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		e.logger.Error("ocr extraction failed",
			"path", imagePath,
			"elapsed_ms", float64(time.Since(start).Microseconds())/1000,
			"error", err)
		return domain.Extraction{}, domain.WrapError(domain.ErrExtraction, "run tesseract", err)
	}

	text := strings.TrimSpace(stdout.String())
	wordCount := len(strings.Fields(text))
	sufficient := wordCount >= e.minWords

	e.logger.Debug("ocr extraction complete",
		"path", imagePath,
		"word_count", wordCount,
		"sufficient", sufficient,
		"elapsed_ms", float64(time.Since(start).Microseconds())/1000)

	return domain.Extraction{
		Text:       text,
		WordCount:  wordCount,
		Sufficient: sufficient,
	}, nil
}
