package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
	"github.com/kirillkom/screenshot-organizer/internal/core/ports"
)

// Confidence reported for keyword-classified (OCR) results. Vision results
// carry the describer's own confidence.
const ocrConfidence = 0.8

// pipelineState models the tiered analysis flow. CLASSIFY and DESCRIBE are
// terminal; every transition is driven by an extractor outcome.
type pipelineState int

const (
	stateExtract pipelineState = iota
	stateClassify
	stateDescribe
)

// AnalyzeScreenshotUseCase runs the tiered pipeline: extract text first,
// classify it when the word count clears the threshold, otherwise fall back
// to the vision describer. Describer failures propagate to the caller; the
// pipeline never swallows them.
type AnalyzeScreenshotUseCase struct {
	extractor  ports.TextExtractor
	classifier ports.TextClassifier
	describer  ports.ContentDescriber
	logger     *slog.Logger
	now        func() time.Time
}

func NewAnalyzeScreenshotUseCase(
	extractor ports.TextExtractor,
	classifier ports.TextClassifier,
	describer ports.ContentDescriber,
	logger *slog.Logger,
) *AnalyzeScreenshotUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeScreenshotUseCase{
		extractor:  extractor,
		classifier: classifier,
		describer:  describer,
		logger:     logger,
		now:        time.Now,
	}
}

// Analyze processes a single screenshot. Partial outputs survive into the
// terminal result: text extracted before a vision fallback is retained, and
// elapsed time always covers the full run.
func (uc *AnalyzeScreenshotUseCase) Analyze(ctx context.Context, imagePath string, forceVision bool) (domain.AnalysisResult, error) {
	start := uc.now()
	var result domain.AnalysisResult

	state := stateExtract
	if forceVision {
		uc.logger.Debug("vision forced, skipping extraction", "path", imagePath)
		state = stateDescribe
	}

	for {
		switch state {
		case stateExtract:
			extraction, err := uc.extractor.Extract(ctx, imagePath)
			if err != nil {
				uc.logger.Warn("extraction failed, falling back to vision",
					"path", imagePath, "error", err)
				state = stateDescribe
				continue
			}
			result.ExtractedText = extraction.Text
			result.WordCount = extraction.WordCount
			if extraction.Sufficient {
				state = stateClassify
			} else {
				uc.logger.Debug("insufficient extracted text, falling back to vision",
					"path", imagePath, "word_count", extraction.WordCount)
				state = stateDescribe
			}

		case stateClassify:
			category := uc.classifier.Classify(result.ExtractedText)
			base := filenameBase(result.ExtractedText, category)
			result.Category = category
			result.Description = base
			result.SuggestedFilename = base
			result.Confidence = ocrConfidence
			result.ProcessingMethod = domain.MethodOCR
			return uc.finish(result, start, imagePath), nil

		case stateDescribe:
			description, err := uc.describer.Describe(ctx, imagePath)
			if err != nil {
				result.ProcessingMethod = domain.MethodVision
				result.ProcessingTimeMs = float64(uc.now().Sub(start).Microseconds()) / 1000
				result.Error = err.Error()
				uc.logger.Error("analysis failed", "path", imagePath, "error", err)
				return result, fmt.Errorf("describe screenshot: %w", err)
			}
			result.Category = description.Category
			result.Description = description.Description
			result.SuggestedFilename = description.SuggestedFilename
			result.Confidence = description.Confidence
			result.ProcessingMethod = domain.MethodVision
			return uc.finish(result, start, imagePath), nil
		}
	}
}

func (uc *AnalyzeScreenshotUseCase) finish(result domain.AnalysisResult, start time.Time, imagePath string) domain.AnalysisResult {
	result.ProcessingTimeMs = float64(uc.now().Sub(start).Microseconds()) / 1000
	result.Success = true

	uc.logger.Info("analysis complete",
		"path", imagePath,
		"method", result.ProcessingMethod,
		"category", result.Category,
		"elapsed_ms", result.ProcessingTimeMs)
	return result
}

// filenameBase builds a descriptive base from the first five tokens longer
// than two runes, lower-cased and underscore-joined. When nothing qualifies
// the category names the file instead.
func filenameBase(text, category string) string {
	var tokens []string
	for _, token := range strings.Fields(text) {
		if len([]rune(token)) > 2 {
			tokens = append(tokens, strings.ToLower(token))
			if len(tokens) == 5 {
				break
			}
		}
	}
	if len(tokens) == 0 {
		return category + "_screenshot"
	}
	return strings.Join(tokens, "_")
}
