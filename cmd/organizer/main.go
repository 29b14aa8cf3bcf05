package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/kirillkom/screenshot-organizer/internal/bootstrap"
	"github.com/kirillkom/screenshot-organizer/internal/config"
	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
	"github.com/kirillkom/screenshot-organizer/internal/core/usecase"
	"github.com/kirillkom/screenshot-organizer/internal/observability/logging"
)

func main() {
	analyzePath := flag.String("analyze", "", "analyze a single screenshot and print the result")
	forceVision := flag.Bool("force-vision", false, "skip OCR and use the vision describer directly")
	batchFolder := flag.String("batch", "", "process every screenshot in a folder")
	recursive := flag.Bool("recursive", false, "include subdirectories in batch runs")
	organize := flag.Bool("organize", false, "move analyzed files into category folders")
	maxFiles := flag.Int("max-files", 0, "stop the batch after this many files (0 = no limit)")
	minKB := flag.Int("min-kb", 0, "skip files smaller than this (0 = no lower bound)")
	maxKB := flag.Int("max-kb", 0, "skip files larger than this (0 = no upper bound)")
	showStats := flag.Bool("stats", false, "print per-category file counts")
	flag.Parse()

	cfg := config.Load()
	logger := logging.NewTextLogger(os.Stderr, "screenshot-organizer", cfg.LogLevel)

	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *analyzePath != "":
		runAnalyze(ctx, app, *analyzePath, *forceVision)
	case *batchFolder != "":
		runBatch(ctx, app, *batchFolder, batchFlags{
			recursive: *recursive,
			organize:  *organize,
			maxFiles:  *maxFiles,
			minKB:     *minKB,
			maxKB:     *maxKB,
		})
	case *showStats:
		runStats(app)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runAnalyze(ctx context.Context, app *bootstrap.App, path string, forceVision bool) {
	result, err := app.AnalyzeUC.Analyze(ctx, path, forceVision)
	app.Metrics.ObserveAnalysis("cli", result, err)

	printJSON(result)
	if err != nil {
		os.Exit(1)
	}
}

type batchFlags struct {
	recursive bool
	organize  bool
	maxFiles  int
	minKB     int
	maxKB     int
}

func runBatch(ctx context.Context, app *bootstrap.App, folder string, flags batchFlags) {
	files, err := app.Scanner.Scan(folder, flags.recursive)
	if err != nil {
		log.Fatalf("scan error: %v", err)
	}
	if flags.minKB > 0 || flags.maxKB > 0 {
		files = app.Scanner.FilterBySize(files, flags.minKB, flags.maxKB)
	}

	skipped := 0
	if flags.maxFiles > 0 && len(files) > flags.maxFiles {
		skipped = len(files) - flags.maxFiles
		files = files[:flags.maxFiles]
	}

	opts := usecase.BatchOptions{Organize: flags.organize}
	perFile := app.BatchUC.PerFile(opts)
	instrumented := func(ctx context.Context, file domain.FileRecord) (domain.AnalysisResult, error) {
		app.Metrics.StartBatchFile()
		result, err := perFile(ctx, file)
		app.Metrics.FinishBatchFile("cli", err)
		if err == nil && flags.organize {
			app.Metrics.ObserveOrganized("cli", result.Category)
		}
		return result, err
	}
	progress := func(index, total int, file domain.FileRecord) {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", index, total, file.Filename)
	}

	stats := app.BatchUC.Process(ctx, files, instrumented, progress)
	stats.Skipped += skipped

	fmt.Println(summaryReport(stats))
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

func runStats(app *bootstrap.App) {
	stats, err := app.Organizer.Statistics()
	if err != nil {
		log.Fatalf("statistics error: %v", err)
	}
	printJSON(stats)
}

// summaryReport renders batch stats for humans: totals, rates, and at most
// ten error lines.
func summaryReport(stats domain.BatchStats) string {
	lines := []string{
		"=== Batch Processing Summary ===",
		fmt.Sprintf("Total Files: %d", stats.TotalFiles),
		fmt.Sprintf("Processed: %d", stats.Processed),
		fmt.Sprintf("Successful: %d", stats.Successful),
		fmt.Sprintf("Failed: %d", stats.Failed),
		fmt.Sprintf("Skipped: %d", stats.Skipped),
		fmt.Sprintf("OCR / Vision: %d / %d", stats.OCRProcessed, stats.VisionProcessed),
		fmt.Sprintf("Success Rate: %.1f%%", stats.SuccessRate()),
		fmt.Sprintf("Processing Time: %.2fms", stats.ProcessingTimeMs),
	}
	if stats.Processed > 0 {
		lines = append(lines, fmt.Sprintf("Avg Time/File: %.2fms", stats.AverageTimePerFileMs()))
	} else {
		lines = append(lines, "Avg Time/File: N/A")
	}

	if len(stats.CategoriesCount) > 0 {
		lines = append(lines, "", "=== Categories ===")
		for _, category := range sortedKeys(stats.CategoriesCount) {
			lines = append(lines, fmt.Sprintf("%s: %d", category, stats.CategoriesCount[category]))
		}
	}

	if len(stats.Errors) > 0 {
		lines = append(lines, "", fmt.Sprintf("=== Errors (%d) ===", len(stats.Errors)))
		bounded, omitted := stats.BoundedErrors(10)
		for idx, msg := range bounded {
			lines = append(lines, fmt.Sprintf("%d. %s", idx+1, msg))
		}
		if omitted > 0 {
			lines = append(lines, fmt.Sprintf("... and %d more errors", omitted))
		}
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		log.Fatalf("encode output: %v", err)
	}
}
