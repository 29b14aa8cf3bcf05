package mcpadapter

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
	"github.com/kirillkom/screenshot-organizer/internal/core/ports"
	"github.com/kirillkom/screenshot-organizer/internal/core/usecase"
	"github.com/kirillkom/screenshot-organizer/internal/observability/metrics"
)

// Server exposes the screenshot pipeline as MCP tools over stdio. It is the
// only boundary of the module; every tool returns a JSON text payload.
type Server struct {
	scanner    ports.ScreenshotScanner
	analyzer   *usecase.AnalyzeScreenshotUseCase
	batch      *usecase.BatchProcessUseCase
	organizer  ports.FileOrganizer
	classifier ports.TextClassifier
	categories *domain.CategorySet
	baseFolder string
	keepOrig   bool
	metrics    *metrics.PipelineMetrics
	logger     *slog.Logger
}

type ServerDeps struct {
	Scanner    ports.ScreenshotScanner
	Analyzer   *usecase.AnalyzeScreenshotUseCase
	Batch      *usecase.BatchProcessUseCase
	Organizer  ports.FileOrganizer
	Classifier ports.TextClassifier
	Categories *domain.CategorySet
	BaseFolder string
	KeepOrig   bool
	Metrics    *metrics.PipelineMetrics
	Logger     *slog.Logger
}

func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		scanner:    deps.Scanner,
		analyzer:   deps.Analyzer,
		batch:      deps.Batch,
		organizer:  deps.Organizer,
		classifier: deps.Classifier,
		categories: deps.Categories,
		baseFolder: deps.BaseFolder,
		keepOrig:   deps.KeepOrig,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Register adds every tool to srv.
func (s *Server) Register(srv *server.MCPServer) {
	srv.AddTool(mcp.NewTool("list_screenshots",
		mcp.WithDescription("List screenshot files in a directory without analyzing them."),
		mcp.WithString("directory", mcp.Required(), mcp.Description("Absolute path to the directory to scan")),
		mcp.WithBoolean("recursive", mcp.Description("Scan subdirectories recursively")),
		mcp.WithNumber("max_files", mcp.Description("Maximum number of files to return")),
	), s.listScreenshots)

	srv.AddTool(mcp.NewTool("analyze_screenshot",
		mcp.WithDescription("Analyze a screenshot: OCR first, vision fallback when text is insufficient."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to the screenshot file")),
		mcp.WithBoolean("force_vision", mcp.Description("Skip OCR and use the vision describer directly")),
	), s.analyzeScreenshot)

	srv.AddTool(mcp.NewTool("get_categories",
		mcp.WithDescription("List the configured screenshot categories and their keywords."),
	), s.getCategories)

	srv.AddTool(mcp.NewTool("categorize_screenshot",
		mcp.WithDescription("Suggest a category for text content using the keyword classifier."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text content to categorize")),
		mcp.WithArray("available_categories", mcp.Description("Restrict the suggestion to these category names")),
	), s.categorizeScreenshot)

	srv.AddTool(mcp.NewTool("create_category_folder",
		mcp.WithDescription("Create a category folder for organizing screenshots."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name, e.g. 'code' or 'errors'")),
		mcp.WithString("base_dir", mcp.Description("Base directory; the configured base folder when omitted")),
	), s.createCategoryFolder)

	srv.AddTool(mcp.NewTool("move_screenshot",
		mcp.WithDescription("Move or copy a screenshot into a destination folder, never overwriting."),
		mcp.WithString("source_path", mcp.Required(), mcp.Description("Path of the screenshot to move")),
		mcp.WithString("dest_folder", mcp.Required(), mcp.Description("Destination folder")),
		mcp.WithString("new_filename", mcp.Description("Rename the file; keeps the original name when omitted")),
		mcp.WithBoolean("keep_original", mcp.Description("Copy instead of move; defaults to the configured keep-originals setting")),
	), s.moveScreenshot)

	srv.AddTool(mcp.NewTool("generate_filename",
		mcp.WithDescription("Generate a descriptive filename for a screenshot."),
		mcp.WithString("original_filename", mcp.Required(), mcp.Description("Original file name")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name")),
		mcp.WithString("text", mcp.Description("Extracted text used for the descriptive base")),
		mcp.WithString("description", mcp.Description("Vision description used when no text is given")),
	), s.generateFilename)

	srv.AddTool(mcp.NewTool("batch_process",
		mcp.WithDescription("Analyze (and optionally organize) every screenshot in a folder."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Folder to process")),
		mcp.WithBoolean("recursive", mcp.Description("Process subdirectories recursively")),
		mcp.WithNumber("max_files", mcp.Description("Stop after this many files")),
		mcp.WithBoolean("organize", mcp.Description("Move analyzed files into category folders")),
	), s.batchProcess)

	srv.AddTool(mcp.NewTool("get_statistics",
		mcp.WithDescription("Count organized files per category folder."),
	), s.getStatistics)

	s.logger.Info("mcp tools registered", "count", 9)
}
