package mcpadapter

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
	"github.com/kirillkom/screenshot-organizer/internal/core/usecase"
)

type scannerStub struct {
	files []domain.FileRecord
}

func (s *scannerStub) Scan(string, bool) ([]domain.FileRecord, error) { return s.files, nil }

func (s *scannerStub) FilterBySize(files []domain.FileRecord, _, _ int) []domain.FileRecord {
	return files
}

type classifierStub struct {
	match domain.ClassifierMatch
}

func (c *classifierStub) Classify(string) string                 { return c.match.Category }
func (c *classifierStub) Evaluate(string) domain.ClassifierMatch { return c.match }
func (c *classifierStub) AddPattern(string, string) error        { return nil }

type organizerStub struct {
	stats map[string]int
}

func (o *organizerStub) Organize(_ context.Context, sourcePath, _, _ string) domain.OrganizeResult {
	return domain.OrganizeResult{Success: true, OriginalPath: sourcePath}
}

func (o *organizerStub) EnsureCategoryFolder(category, baseDir string) (string, bool, error) {
	return filepath.Join(baseDir, category), true, nil
}

func (o *organizerStub) Move(_ context.Context, sourcePath, destFolder, _ string, _ bool) domain.OrganizeResult {
	return domain.OrganizeResult{
		Success:         true,
		OriginalPath:    sourcePath,
		DestinationPath: filepath.Join(destFolder, filepath.Base(sourcePath)),
	}
}

func (o *organizerStub) Statistics() (map[string]int, error) { return o.stats, nil }

type extractorStub struct {
	extraction domain.Extraction
}

func (e *extractorStub) Extract(context.Context, string) (domain.Extraction, error) {
	return e.extraction, nil
}

type describerStub struct{}

func (describerStub) Describe(context.Context, string) (domain.Description, error) {
	return domain.Description{Category: "other", Description: "x", SuggestedFilename: "x"}, nil
}

func testServer() *Server {
	categories := domain.NewCategorySet([]domain.Category{
		{Name: "code", Keywords: []string{`\bdef\b`}},
		{Name: "other"},
	})
	classifier := &classifierStub{match: domain.ClassifierMatch{
		Category:        "code",
		Confidence:      0.7,
		MatchedKeywords: []string{`\bdef\b`},
	}}
	analyzer := usecase.NewAnalyzeScreenshotUseCase(
		&extractorStub{extraction: domain.Extraction{Text: "def main() here we go", WordCount: 5, Sufficient: true}},
		classifier,
		describerStub{},
		nil,
	)
	scanner := &scannerStub{}
	organizer := &organizerStub{stats: map[string]int{"code": 2, "other": 1}}
	return NewServer(ServerDeps{
		Scanner:    scanner,
		Analyzer:   analyzer,
		Batch:      usecase.NewBatchProcessUseCase(scanner, analyzer, organizer, nil),
		Organizer:  organizer,
		Classifier: classifier,
		Categories: categories,
		BaseFolder: "/srv/shots",
	})
}

func callArgs(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func decodePayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return payload
}

func TestGetCategoriesTool(t *testing.T) {
	result, err := testServer().getCategories(context.Background(), callArgs(nil))
	if err != nil {
		t.Fatalf("getCategories() error = %v", err)
	}

	payload := decodePayload(t, result)
	if payload["default_category"] != "other" {
		t.Fatalf("default_category = %v", payload["default_category"])
	}
	if len(payload["categories"].([]any)) != 2 {
		t.Fatalf("unexpected categories payload: %v", payload["categories"])
	}
}

func TestCategorizeScreenshotTool(t *testing.T) {
	result, err := testServer().categorizeScreenshot(context.Background(), callArgs(map[string]any{
		"text": "def main(): pass",
	}))
	if err != nil {
		t.Fatalf("categorizeScreenshot() error = %v", err)
	}

	payload := decodePayload(t, result)
	if payload["suggested_category"] != "code" {
		t.Fatalf("suggested_category = %v", payload["suggested_category"])
	}
	if payload["method"] != "keyword_classifier" {
		t.Fatalf("method = %v", payload["method"])
	}
}

func TestCategorizeScreenshotToolRestrictsToAvailable(t *testing.T) {
	result, err := testServer().categorizeScreenshot(context.Background(), callArgs(map[string]any{
		"text":                 "def main(): pass",
		"available_categories": []any{"memes", "design"},
	}))
	if err != nil {
		t.Fatalf("categorizeScreenshot() error = %v", err)
	}

	payload := decodePayload(t, result)
	if payload["suggested_category"] != domain.DefaultCategory {
		t.Fatalf("suggested_category = %v, want default", payload["suggested_category"])
	}
}

func TestGenerateFilenameToolUsesText(t *testing.T) {
	result, err := testServer().generateFilename(context.Background(), callArgs(map[string]any{
		"original_filename": "IMG_0001.PNG",
		"category":          "code",
		"text":              "login handler panics on nil session token",
	}))
	if err != nil {
		t.Fatalf("generateFilename() error = %v", err)
	}

	payload := decodePayload(t, result)
	suggested := payload["suggested_filename"].(string)
	if !strings.HasPrefix(suggested, "login_handler_panics_nil_session") {
		t.Fatalf("suggested_filename = %q", suggested)
	}
	if payload["extension"] != ".PNG" {
		t.Fatalf("extension = %v", payload["extension"])
	}
}

func TestGenerateFilenameToolFallsBackToCategory(t *testing.T) {
	result, err := testServer().generateFilename(context.Background(), callArgs(map[string]any{
		"original_filename": "shot.png",
		"category":          "memes",
	}))
	if err != nil {
		t.Fatalf("generateFilename() error = %v", err)
	}

	payload := decodePayload(t, result)
	suggested := payload["suggested_filename"].(string)
	if !strings.HasPrefix(suggested, "memes_screenshot_") {
		t.Fatalf("suggested_filename = %q, want memes_screenshot_ prefix", suggested)
	}
}

func TestAnalyzeScreenshotToolMissingFile(t *testing.T) {
	result, err := testServer().analyzeScreenshot(context.Background(), callArgs(map[string]any{
		"file_path": filepath.Join(t.TempDir(), "absent.png"),
	}))
	if err != nil {
		t.Fatalf("analyzeScreenshot() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected error result for missing file")
	}

	payload := decodePayload(t, result)
	if payload["kind"] != "file_not_found" {
		t.Fatalf("kind = %v, want file_not_found", payload["kind"])
	}
}

func TestAnalyzeScreenshotToolReturnsResult(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result, err := testServer().analyzeScreenshot(context.Background(), callArgs(map[string]any{
		"file_path": path,
	}))
	if err != nil {
		t.Fatalf("analyzeScreenshot() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result")
	}

	payload := decodePayload(t, result)
	if payload["category"] != "code" {
		t.Fatalf("category = %v, want code", payload["category"])
	}
	if payload["processing_method"] != "ocr" {
		t.Fatalf("processing_method = %v, want ocr", payload["processing_method"])
	}
}

func TestListScreenshotsToolTruncates(t *testing.T) {
	srv := testServer()
	srv.scanner = &scannerStub{files: []domain.FileRecord{
		{Path: "/shots/a.png", Filename: "a.png"},
		{Path: "/shots/b.png", Filename: "b.png"},
		{Path: "/shots/c.png", Filename: "c.png"},
	}}

	result, err := srv.listScreenshots(context.Background(), callArgs(map[string]any{
		"directory": t.TempDir(),
		"max_files": float64(2),
	}))
	if err != nil {
		t.Fatalf("listScreenshots() error = %v", err)
	}

	payload := decodePayload(t, result)
	if payload["total_count"] != float64(3) {
		t.Fatalf("total_count = %v, want 3", payload["total_count"])
	}
	if payload["truncated"] != true {
		t.Fatalf("expected truncated=true")
	}
	if len(payload["files"].([]any)) != 2 {
		t.Fatalf("files length = %d, want 2", len(payload["files"].([]any)))
	}
}

func TestGetStatisticsTool(t *testing.T) {
	result, err := testServer().getStatistics(context.Background(), callArgs(nil))
	if err != nil {
		t.Fatalf("getStatistics() error = %v", err)
	}

	payload := decodePayload(t, result)
	if payload["total_files"] != float64(3) {
		t.Fatalf("total_files = %v, want 3", payload["total_files"])
	}
	stats := payload["statistics"].(map[string]any)
	if stats["code"] != float64(2) {
		t.Fatalf("code count = %v, want 2", stats["code"])
	}
}

func TestBatchProcessToolShape(t *testing.T) {
	result, err := testServer().batchProcess(context.Background(), callArgs(map[string]any{
		"folder": t.TempDir(),
	}))
	if err != nil {
		t.Fatalf("batchProcess() error = %v", err)
	}

	payload := decodePayload(t, result)
	for _, key := range []string{"run_id", "total_files", "processed", "successful", "failed", "success_rate", "errors"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("batch payload missing %q: %v", key, payload)
		}
	}
	if payload["processed"] != float64(0) {
		t.Fatalf("processed = %v, want 0 for empty folder", payload["processed"])
	}
}

func TestMoveScreenshotToolMissingDest(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	result, err := testServer().moveScreenshot(context.Background(), callArgs(map[string]any{
		"source_path": source,
		"dest_folder": filepath.Join(dir, "absent"),
	}))
	if err != nil {
		t.Fatalf("moveScreenshot() error = %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected error result for missing destination folder")
	}
	payload := decodePayload(t, result)
	if payload["kind"] != "directory_not_found" {
		t.Fatalf("kind = %v, want directory_not_found", payload["kind"])
	}
}
