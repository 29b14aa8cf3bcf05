package bootstrap

import (
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/kirillkom/screenshot-organizer/internal/config"
	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
	"github.com/kirillkom/screenshot-organizer/internal/core/ports"
	"github.com/kirillkom/screenshot-organizer/internal/core/usecase"
	"github.com/kirillkom/screenshot-organizer/internal/infrastructure/classifier/keyword"
	openaidescriber "github.com/kirillkom/screenshot-organizer/internal/infrastructure/describer/openai"
	"github.com/kirillkom/screenshot-organizer/internal/infrastructure/extractor/tesseract"
	organizerfs "github.com/kirillkom/screenshot-organizer/internal/infrastructure/organizer/localfs"
	"github.com/kirillkom/screenshot-organizer/internal/infrastructure/resilience"
	scannerfs "github.com/kirillkom/screenshot-organizer/internal/infrastructure/scanner/localfs"
	"github.com/kirillkom/screenshot-organizer/internal/observability/metrics"
)

// App holds the wired dependency graph. Constructed once at startup and
// passed to whichever boundary (MCP server or CLI) is running.
type App struct {
	Config     config.Config
	Categories *domain.CategorySet

	Scanner    ports.ScreenshotScanner
	Classifier ports.TextClassifier
	Organizer  ports.FileOrganizer
	AnalyzeUC  *usecase.AnalyzeScreenshotUseCase
	BatchUC    *usecase.BatchProcessUseCase

	Metrics *metrics.PipelineMetrics
	Logger  *slog.Logger
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	categories, err := config.LoadCategories(cfg.CategoriesFile)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	classifier, err := keyword.New(categories, logger)
	if err != nil {
		return nil, fmt.Errorf("build keyword classifier: %w", err)
	}

	extractor := tesseract.NewExtractor(cfg.TesseractBinary, cfg.TesseractLanguage, cfg.MinWordsThreshold, logger)

	limiter := rate.NewLimiter(rate.Limit(cfg.VisionRPS), cfg.VisionBurst)
	var describer ports.ContentDescriber = openaidescriber.NewDescriber(
		cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.VisionModel, categories, limiter, logger)
	describer = resilience.WrapDescriber(describer, resilience.DefaultConfig(), logger)

	organizer := organizerfs.New(cfg.BaseFolder, categories, cfg.KeepOriginals, logger)
	scanner := scannerfs.New(cfg.SupportedExtensions, logger)

	analyzeUC := usecase.NewAnalyzeScreenshotUseCase(extractor, classifier, describer, logger)
	batchUC := usecase.NewBatchProcessUseCase(scanner, analyzeUC, organizer, logger)

	return &App{
		Config:     cfg,
		Categories: categories,
		Scanner:    scanner,
		Classifier: classifier,
		Organizer:  organizer,
		AnalyzeUC:  analyzeUC,
		BatchUC:    batchUC,
		Metrics:    metrics.NewPipelineMetrics("screenshot-organizer"),
		Logger:     logger,
	}, nil
}
