package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

type extractorFake struct {
	extraction domain.Extraction
	err        error
	calls      int
}

func (f *extractorFake) Extract(context.Context, string) (domain.Extraction, error) {
	f.calls++
	if f.err != nil {
		return domain.Extraction{}, f.err
	}
	return f.extraction, nil
}

type classifierFake struct {
	category string
	calls    int
}

func (f *classifierFake) Classify(string) string {
	f.calls++
	return f.category
}

func (f *classifierFake) Evaluate(text string) domain.ClassifierMatch {
	return domain.ClassifierMatch{Category: f.category}
}

func (f *classifierFake) AddPattern(string, string) error { return nil }

type describerFake struct {
	description domain.Description
	err         error
	calls       int
}

func (f *describerFake) Describe(context.Context, string) (domain.Description, error) {
	f.calls++
	if f.err != nil {
		return domain.Description{}, f.err
	}
	return f.description, nil
}

func TestAnalyzeSufficientTextTerminatesWithOCR(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{
		Text:       "invoice payment overdue reminder notice",
		WordCount:  5,
		Sufficient: true,
	}}
	classifier := &classifierFake{category: "communication"}
	describer := &describerFake{}
	uc := NewAnalyzeScreenshotUseCase(extractor, classifier, describer, nil)

	result, err := uc.Analyze(context.Background(), "/tmp/shot.png", false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.ProcessingMethod != domain.MethodOCR {
		t.Fatalf("processing method = %q, want ocr", result.ProcessingMethod)
	}
	if result.Category != "communication" {
		t.Fatalf("category = %q, want communication", result.Category)
	}
	if result.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8", result.Confidence)
	}
	if !result.Success {
		t.Fatalf("expected success")
	}
	if describer.calls != 0 {
		t.Fatalf("describer called %d times on the OCR path", describer.calls)
	}
	if result.SuggestedFilename != "invoice_payment_overdue_reminder_notice" {
		t.Fatalf("suggested filename = %q", result.SuggestedFilename)
	}
}

func TestAnalyzeInsufficientTextFallsBackToVision(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{
		Text:       "ok",
		WordCount:  1,
		Sufficient: false,
	}}
	describer := &describerFake{description: domain.Description{
		Description:       "A photo of a sunset",
		Category:          "other",
		SuggestedFilename: "sunset_photo",
		Confidence:        0.7,
	}}
	classifier := &classifierFake{category: "code"}
	uc := NewAnalyzeScreenshotUseCase(extractor, classifier, describer, nil)

	result, err := uc.Analyze(context.Background(), "/tmp/shot.png", false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.ProcessingMethod != domain.MethodVision {
		t.Fatalf("processing method = %q, want vision", result.ProcessingMethod)
	}
	if result.ExtractedText != "ok" {
		t.Fatalf("extracted text lost on fallback: %q", result.ExtractedText)
	}
	if result.WordCount != 1 {
		t.Fatalf("word count = %d, want 1", result.WordCount)
	}
	if result.Category != "other" || result.Confidence != 0.7 {
		t.Fatalf("unexpected vision result: %+v", result)
	}
	if classifier.calls != 0 {
		t.Fatalf("classifier called %d times on the vision path", classifier.calls)
	}
}

func TestAnalyzeExtractionErrorFallsBackToVision(t *testing.T) {
	extractor := &extractorFake{err: errors.New("tesseract exploded")}
	describer := &describerFake{description: domain.Description{
		Description:       "Dashboard screenshot",
		Category:          "design",
		SuggestedFilename: "dashboard",
		Confidence:        0.6,
	}}
	uc := NewAnalyzeScreenshotUseCase(extractor, &classifierFake{}, describer, nil)

	result, err := uc.Analyze(context.Background(), "/tmp/shot.png", false)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.ProcessingMethod != domain.MethodVision {
		t.Fatalf("processing method = %q, want vision", result.ProcessingMethod)
	}
	if describer.calls != 1 {
		t.Fatalf("describer calls = %d, want 1", describer.calls)
	}
}

func TestAnalyzeDescriberErrorPropagates(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{Text: "hi", WordCount: 1}}
	describer := &describerFake{err: errors.New("rate limited")}
	uc := NewAnalyzeScreenshotUseCase(extractor, &classifierFake{}, describer, nil)

	result, err := uc.Analyze(context.Background(), "/tmp/shot.png", false)
	if err == nil {
		t.Fatalf("expected error from describer")
	}
	if result.Success {
		t.Fatalf("expected unsuccessful result")
	}
	if result.Error == "" {
		t.Fatalf("expected error recorded on result")
	}
	if result.ProcessingMethod != domain.MethodVision {
		t.Fatalf("processing method = %q, want vision", result.ProcessingMethod)
	}
}

func TestAnalyzeForceVisionSkipsExtraction(t *testing.T) {
	extractor := &extractorFake{extraction: domain.Extraction{
		Text:       "plenty of perfectly extractable words right here in this image",
		WordCount:  10,
		Sufficient: true,
	}}
	describer := &describerFake{description: domain.Description{
		Description:       "Forced vision run",
		Category:          "other",
		SuggestedFilename: "forced",
		Confidence:        0.9,
	}}
	uc := NewAnalyzeScreenshotUseCase(extractor, &classifierFake{}, describer, nil)

	result, err := uc.Analyze(context.Background(), "/tmp/shot.png", true)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if extractor.calls != 0 {
		t.Fatalf("extractor called %d times with vision forced", extractor.calls)
	}
	if result.ProcessingMethod != domain.MethodVision {
		t.Fatalf("processing method = %q, want vision", result.ProcessingMethod)
	}
}

func TestFilenameBaseLimitsAndLowercases(t *testing.T) {
	base := filenameBase("The Quick BROWN fox jumped over the lazy dog", "code")
	parts := strings.Split(base, "_")
	if len(parts) != 5 {
		t.Fatalf("expected 5 tokens, got %d (%q)", len(parts), base)
	}
	if base != strings.ToLower(base) {
		t.Fatalf("expected lower-case base, got %q", base)
	}
}

func TestFilenameBaseSkipsShortTokens(t *testing.T) {
	if got := filenameBase("an ox is by me", "errors"); got != "errors_screenshot" {
		t.Fatalf("filenameBase() = %q, want errors_screenshot", got)
	}
}
