package mcpadapter

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
	"github.com/kirillkom/screenshot-organizer/internal/core/usecase"
)

const batchErrorLimit = 10

func (s *Server) listScreenshots(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	directory, err := req.RequireString("directory")
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "list_screenshots", err)), nil
	}

	resolved, err := resolveDir(directory)
	if err != nil {
		return errorResult(err), nil
	}

	files, err := s.scanner.Scan(resolved, req.GetBool("recursive", false))
	if err != nil {
		return errorResult(err), nil
	}

	totalCount := len(files)
	truncated := false
	if maxFiles := req.GetInt("max_files", 0); maxFiles > 0 && len(files) > maxFiles {
		files = files[:maxFiles]
		truncated = true
		s.logger.Info("file list truncated", "limit", maxFiles, "found", totalCount)
	}

	return jsonResult(map[string]any{
		"files":       files,
		"total_count": totalCount,
		"truncated":   truncated,
	})
}

func (s *Server) analyzeScreenshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "analyze_screenshot", err)), nil
	}

	resolved, err := resolveFile(filePath)
	if err != nil {
		return errorResult(err), nil
	}

	result, analyzeErr := s.analyzer.Analyze(ctx, resolved, req.GetBool("force_vision", false))
	if s.metrics != nil {
		s.metrics.ObserveAnalysis("mcp", result, analyzeErr)
	}
	// Pipeline failures are part of the result contract, not boundary errors.
	return jsonResult(result)
}

func (s *Server) getCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"categories":       s.categories.Categories(),
		"default_category": domain.DefaultCategory,
	})
}

func (s *Server) categorizeScreenshot(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "categorize_screenshot", err)), nil
	}

	match := s.classifier.Evaluate(text)
	if available := req.GetStringSlice("available_categories", nil); len(available) > 0 &&
		!slices.Contains(available, match.Category) {
		s.logger.Debug("suggestion outside available categories, using default",
			"suggested", match.Category)
		match.Category = domain.DefaultCategory
	}

	return jsonResult(map[string]any{
		"suggested_category": match.Category,
		"confidence":         match.Confidence,
		"matched_keywords":   match.MatchedKeywords,
		"method":             "keyword_classifier",
	})
}

func (s *Server) createCategoryFolder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "create_category_folder", err)), nil
	}

	baseDir := req.GetString("base_dir", "")
	if baseDir != "" {
		baseDir = normalizePath(baseDir)
	}

	folderPath, created, err := s.organizer.EnsureCategoryFolder(category, baseDir)
	if err != nil {
		return jsonResult(map[string]any{
			"folder_path": folderPath,
			"created":     false,
			"success":     false,
			"error":       err.Error(),
		})
	}
	return jsonResult(map[string]any{
		"folder_path": folderPath,
		"created":     created,
		"success":     true,
	})
}

func (s *Server) moveScreenshot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourcePath, err := req.RequireString("source_path")
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "move_screenshot", err)), nil
	}
	destFolder, err := req.RequireString("dest_folder")
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "move_screenshot", err)), nil
	}

	source, err := resolveFile(sourcePath)
	if err != nil {
		return errorResult(err), nil
	}
	dest, err := resolveDir(destFolder)
	if err != nil {
		return errorResult(err), nil
	}

	keepOriginal := req.GetBool("keep_original", s.keepOrig)
	result := s.organizer.Move(ctx, source, dest, req.GetString("new_filename", ""), keepOriginal)

	operation := "move"
	if keepOriginal {
		operation = "copy"
	}
	return jsonResult(map[string]any{
		"original_path": result.OriginalPath,
		"new_path":      result.DestinationPath,
		"operation":     operation,
		"success":       result.Success,
		"error":         result.Error,
	})
}

func (s *Server) generateFilename(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	originalFilename, err := req.RequireString("original_filename")
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "generate_filename", err)), nil
	}
	category, err := req.RequireString("category")
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "generate_filename", err)), nil
	}

	timestamp := time.Now().Format("2006-01-02")

	base := descriptiveBase(req.GetString("text", ""))
	if base == "" {
		base = descriptiveBase(req.GetString("description", ""))
	}
	if base == "" {
		base = category + "_screenshot"
	}

	return jsonResult(map[string]any{
		"suggested_filename": base + "_" + timestamp,
		"extension":          filepath.Ext(originalFilename),
		"timestamp":          timestamp,
	})
}

func (s *Server) batchProcess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return errorResult(domain.WrapError(domain.ErrInvalidInput, "batch_process", err)), nil
	}

	resolved, err := resolveDir(folder)
	if err != nil {
		return errorResult(err), nil
	}

	opts := usecase.BatchOptions{
		Recursive: req.GetBool("recursive", false),
		MaxFiles:  req.GetInt("max_files", 0),
		Organize:  req.GetBool("organize", false),
	}
	stats, err := s.batch.ProcessFolder(ctx, resolved, opts)
	if err != nil {
		return errorResult(err), nil
	}
	if s.metrics != nil {
		s.metrics.ObserveBatch("mcp", stats)
	}

	errs, omitted := stats.BoundedErrors(batchErrorLimit)
	return jsonResult(map[string]any{
		"run_id":                   stats.RunID,
		"total_files":              stats.TotalFiles,
		"processed":                stats.Processed,
		"successful":               stats.Successful,
		"failed":                   stats.Failed,
		"skipped":                  stats.Skipped,
		"ocr_processed":            stats.OCRProcessed,
		"vision_processed":         stats.VisionProcessed,
		"categories_count":         stats.CategoriesCount,
		"success_rate":             stats.SuccessRate(),
		"processing_time_ms":       stats.ProcessingTimeMs,
		"average_time_per_file_ms": stats.AverageTimePerFileMs(),
		"errors":                   errs,
		"errors_omitted":           omitted,
	})
}

func (s *Server) getStatistics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.organizer.Statistics()
	if err != nil {
		return errorResult(err), nil
	}

	total := 0
	for _, count := range stats {
		total += count
	}
	return jsonResult(map[string]any{
		"statistics":  stats,
		"total_files": total,
		"base_folder": s.baseFolder,
	})
}

// descriptiveBase joins the first five tokens longer than two runes,
// lower-cased. Empty when nothing qualifies.
func descriptiveBase(text string) string {
	var tokens []string
	for _, token := range strings.Fields(text) {
		if len([]rune(token)) > 2 {
			tokens = append(tokens, strings.ToLower(token))
			if len(tokens) == 5 {
				break
			}
		}
	}
	return strings.Join(tokens, "_")
}
