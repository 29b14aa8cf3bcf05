package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
	"github.com/kirillkom/screenshot-organizer/internal/core/ports"
)

// PerFileFunc processes one file of a batch. A returned error marks the
// file as failed without aborting the run.
type PerFileFunc func(ctx context.Context, file domain.FileRecord) (domain.AnalysisResult, error)

// ProgressFunc observes batch progress. index is 1-based.
type ProgressFunc func(index, total int, file domain.FileRecord)

type BatchOptions struct {
	Recursive   bool
	MaxFiles    int
	Organize    bool
	ForceVision bool
	Progress    ProgressFunc
}

// BatchProcessUseCase drives the pipeline over every qualifying file in a
// folder, strictly sequentially in scan order. Failures are isolated per
// file and accumulated; only an inaccessible root folder aborts the run.
type BatchProcessUseCase struct {
	scanner   ports.ScreenshotScanner
	analyzer  *AnalyzeScreenshotUseCase
	organizer ports.FileOrganizer
	logger    *slog.Logger
	now       func() time.Time
}

func NewBatchProcessUseCase(
	scanner ports.ScreenshotScanner,
	analyzer *AnalyzeScreenshotUseCase,
	organizer ports.FileOrganizer,
	logger *slog.Logger,
) *BatchProcessUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessUseCase{
		scanner:   scanner,
		analyzer:  analyzer,
		organizer: organizer,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessFolder scans folder and runs analysis (and optionally organization)
// over each file found. Returns an error only when the root folder is
// inaccessible.
func (uc *BatchProcessUseCase) ProcessFolder(ctx context.Context, folder string, opts BatchOptions) (domain.BatchStats, error) {
	files, err := uc.scanner.Scan(folder, opts.Recursive)
	if err != nil {
		return domain.BatchStats{}, fmt.Errorf("scan batch folder: %w", err)
	}

	skipped := 0
	if opts.MaxFiles > 0 && len(files) > opts.MaxFiles {
		skipped = len(files) - opts.MaxFiles
		files = files[:opts.MaxFiles]
		uc.logger.Info("batch truncated", "limit", opts.MaxFiles, "skipped", skipped)
	}

	stats := uc.Process(ctx, files, uc.PerFile(opts), opts.Progress)
	stats.Skipped += skipped
	return stats, nil
}

// Process iterates files in stable scan order: progress callback first, then
// the per-file function. One file's failure never aborts the batch.
func (uc *BatchProcessUseCase) Process(ctx context.Context, files []domain.FileRecord, fn PerFileFunc, progress ProgressFunc) domain.BatchStats {
	stats := domain.BatchStats{
		RunID:           uuid.NewString(),
		TotalFiles:      len(files),
		CategoriesCount: make(map[string]int),
		Errors:          []string{},
	}
	start := uc.now()

	uc.logger.Info("batch run started", "run_id", stats.RunID, "total_files", stats.TotalFiles)

	for idx, file := range files {
		if progress != nil {
			progress(idx+1, len(files), file)
		}

		result, err := fn(ctx, file)
		stats.Processed++

		if err != nil {
			stats.Failed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", file.Filename, err))
			uc.logger.Warn("batch file failed",
				"run_id", stats.RunID,
				"index", idx+1,
				"total", len(files),
				"file", file.Filename,
				"error", err)
			continue
		}

		stats.Successful++
		stats.CountCategory(result.Category)
		switch result.ProcessingMethod {
		case domain.MethodOCR:
			stats.OCRProcessed++
		case domain.MethodVision:
			stats.VisionProcessed++
		}
		uc.logger.Debug("batch file processed",
			"run_id", stats.RunID,
			"index", idx+1,
			"total", len(files),
			"file", file.Filename,
			"category", result.Category)
	}

	stats.ProcessingTimeMs = float64(uc.now().Sub(start).Microseconds()) / 1000

	uc.logger.Info("batch run complete",
		"run_id", stats.RunID,
		"successful", stats.Successful,
		"failed", stats.Failed,
		"success_rate", stats.SuccessRate(),
		"elapsed_ms", stats.ProcessingTimeMs)
	return stats
}

// PerFile builds the standard per-file function: analyze, then organize when
// requested. Callers running Process directly can wrap it.
func (uc *BatchProcessUseCase) PerFile(opts BatchOptions) PerFileFunc {
	return func(ctx context.Context, file domain.FileRecord) (domain.AnalysisResult, error) {
		result, err := uc.analyzer.Analyze(ctx, file.Path, opts.ForceVision)
		if err != nil {
			return result, err
		}

		if opts.Organize {
			organized := uc.organizer.Organize(ctx, file.Path, result.Category, result.SuggestedFilename)
			if !organized.Success {
				return result, fmt.Errorf("organize: %s", organized.Error)
			}
		}
		return result, nil
	}
}
