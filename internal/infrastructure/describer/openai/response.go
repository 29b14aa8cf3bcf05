package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

type visionPayload struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Filename    string   `json:"filename"`
	Confidence  *float64 `json:"confidence"`
}

// parseResponse expects exactly one JSON object, possibly wrapped in
// Markdown code fences. Malformed or incomplete JSON is a hard failure,
// never silently converted to the default category.
func (d *Describer) parseResponse(raw string) (domain.Description, error) {
	cleaned := stripMarkdownFences(raw)

	var payload visionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return domain.Description{}, domain.WrapError(domain.ErrDescriptionFormat, "parse vision response", err)
	}
	if payload.Category == "" || payload.Description == "" || payload.Filename == "" {
		return domain.Description{}, domain.WrapError(domain.ErrDescriptionFormat, "parse vision response",
			fmt.Errorf("missing required field in %q", cleaned))
	}

	category := payload.Category
	if !d.categories.Contains(category) {
		d.logger.Warn("invalid category from vision model, coercing",
			"category", category, "fallback", domain.DefaultCategory)
		category = domain.DefaultCategory
	}

	confidence := 0.5
	if payload.Confidence != nil {
		confidence = *payload.Confidence
	}

	return domain.Description{
		Description:       payload.Description,
		Category:          category,
		SuggestedFilename: payload.Filename,
		Confidence:        confidence,
	}, nil
}

// stripMarkdownFences removes a surrounding ```...``` block, with or without
// a language tag, leaving the inner JSON untouched.
func stripMarkdownFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "json"))
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
