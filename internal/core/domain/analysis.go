package domain

import "time"

type ProcessingMethod string

const (
	MethodOCR    ProcessingMethod = "ocr"
	MethodVision ProcessingMethod = "vision"
)

// AnalysisResult is the outcome of analyzing one screenshot. It is created
// once per file and not mutated afterwards.
type AnalysisResult struct {
	ExtractedText     string           `json:"extracted_text,omitempty"`
	Description       string           `json:"description,omitempty"`
	Category          string           `json:"category"`
	SuggestedFilename string           `json:"suggested_filename"`
	ProcessingMethod  ProcessingMethod `json:"processing_method"`
	ProcessingTimeMs  float64          `json:"processing_time_ms"`
	Confidence        float64          `json:"confidence"`
	WordCount         int              `json:"word_count"`
	Success           bool             `json:"success"`
	Error             string           `json:"error,omitempty"`
}

// Extraction is the raw output of a text extractor run.
type Extraction struct {
	Text       string `json:"text"`
	WordCount  int    `json:"word_count"`
	Sufficient bool   `json:"sufficient"`
}

// Description is the raw output of a content describer run. Category has
// already been validated against the configured set by the describer.
type Description struct {
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	SuggestedFilename string  `json:"suggested_filename"`
	Confidence        float64 `json:"confidence"`
}

// ClassifierMatch reports how the keyword classifier scored a text:
// the winning category, the patterns that matched, and a coarse confidence
// derived from the match count.
type ClassifierMatch struct {
	Category        string   `json:"suggested_category"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords"`
}

// OrganizeResult reports a single organize operation. I/O failures are
// captured here rather than raised, so batch runs continue.
type OrganizeResult struct {
	Success         bool   `json:"success"`
	OriginalPath    string `json:"original_path"`
	DestinationPath string `json:"destination_path,omitempty"`
	Archived        bool   `json:"archived"`
	Error           string `json:"error,omitempty"`
}

// FileRecord is a point-in-time snapshot of a scanned file. No lock is held
// between scan and use; the file may have changed by consumption time.
type FileRecord struct {
	Path         string    `json:"path"`
	Filename     string    `json:"filename"`
	SizeBytes    int64     `json:"size_bytes"`
	ModifiedTime time.Time `json:"modified_time"`
}

// BatchStats accumulates counters over one batch run. Invariant after the
// run completes: Processed == Successful + Failed.
type BatchStats struct {
	RunID            string         `json:"run_id"`
	TotalFiles       int            `json:"total_files"`
	Processed        int            `json:"processed"`
	Successful       int            `json:"successful"`
	Failed           int            `json:"failed"`
	Skipped          int            `json:"skipped"`
	OCRProcessed     int            `json:"ocr_processed"`
	VisionProcessed  int            `json:"vision_processed"`
	CategoriesCount  map[string]int `json:"categories_count"`
	ProcessingTimeMs float64        `json:"processing_time_ms"`
	Errors           []string       `json:"errors"`
}

// SuccessRate is the percentage of processed files that succeeded, 0 when
// nothing was processed.
func (s BatchStats) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Processed) * 100
}

// AverageTimePerFileMs is 0 when nothing was processed.
func (s BatchStats) AverageTimePerFileMs() float64 {
	if s.Processed == 0 {
		return 0
	}
	return s.ProcessingTimeMs / float64(s.Processed)
}

// BoundedErrors returns at most limit error entries plus the count of
// omitted ones, so failure summaries stay diagnosable without unbounded
// output.
func (s BatchStats) BoundedErrors(limit int) ([]string, int) {
	if limit <= 0 || len(s.Errors) <= limit {
		return s.Errors, 0
	}
	return s.Errors[:limit], len(s.Errors) - limit
}

func (s *BatchStats) CountCategory(category string) {
	if s.CategoriesCount == nil {
		s.CategoriesCount = make(map[string]int)
	}
	s.CategoriesCount[category]++
}
