package keyword

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

type compiledPattern struct {
	raw string
	re  *regexp.Regexp
}

// Classifier scores text against per-category regex pattern sets. Categories
// are evaluated in declaration order and a later category replaces the best
// candidate only on a strictly higher score, so ties resolve to the earliest
// declared category.
//
// AddPattern mutates internal state and must not race with in-flight
// Classify/Evaluate calls.
type Classifier struct {
	order    []string
	patterns map[string][]compiledPattern
	logger   *slog.Logger
}

func New(set *domain.CategorySet, logger *slog.Logger) (*Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Classifier{
		patterns: make(map[string][]compiledPattern),
		logger:   logger,
	}
	for _, category := range set.Categories() {
		c.order = append(c.order, category.Name)
		for _, pattern := range category.Keywords {
			if err := c.appendPattern(category.Name, pattern); err != nil {
				return nil, fmt.Errorf("category %q: %w", category.Name, err)
			}
		}
	}
	return c, nil
}

// Classify returns the category with the strictly highest nonzero match
// count, or the default category for empty text or all-zero scores.
func (c *Classifier) Classify(text string) string {
	return c.Evaluate(text).Category
}

// Evaluate scores every category and reports the winner together with the
// patterns that matched it. Confidence starts at 0.5 and gains 0.1 per
// matched pattern, capped at 0.9; an unmatched text reports 0.5.
func (c *Classifier) Evaluate(text string) domain.ClassifierMatch {
	match := domain.ClassifierMatch{
		Category:        domain.DefaultCategory,
		Confidence:      0.5,
		MatchedKeywords: []string{},
	}
	if strings.TrimSpace(text) == "" {
		c.logger.Debug("empty text, returning default category")
		return match
	}

	bestScore := 0
	for _, category := range c.order {
		score := 0
		var matched []string
		for _, p := range c.patterns[category] {
			if n := len(p.re.FindAllStringIndex(text, -1)); n > 0 {
				score += n
				matched = append(matched, p.raw)
			}
		}
		if score > bestScore {
			bestScore = score
			match.Category = category
			match.MatchedKeywords = matched
		}
	}

	if bestScore == 0 {
		c.logger.Debug("no keyword matches, returning default category")
		return match
	}

	confidence := 0.5 + float64(len(match.MatchedKeywords))*0.1
	if confidence > 0.9 {
		confidence = 0.9
	}
	match.Confidence = confidence

	c.logger.Debug("classified text",
		"category", match.Category,
		"score", bestScore,
		"matched_patterns", len(match.MatchedKeywords))
	return match
}

// AddPattern appends a compiled pattern to a category, creating the category
// if absent. Already-produced classifications are unaffected. Not safe to
// call concurrently with Classify or Evaluate.
func (c *Classifier) AddPattern(category, pattern string) error {
	if _, ok := c.patterns[category]; !ok {
		c.logger.Info("creating classifier category", "category", category)
		c.order = append(c.order, category)
	}
	if err := c.appendPattern(category, pattern); err != nil {
		return err
	}
	c.logger.Debug("added classifier pattern", "category", category, "pattern", pattern)
	return nil
}

// PatternStrings returns the raw pattern sources for a category.
func (c *Classifier) PatternStrings(category string) []string {
	patterns := c.patterns[category]
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.raw
	}
	return out
}

func (c *Classifier) appendPattern(category, pattern string) error {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	c.patterns[category] = append(c.patterns[category], compiledPattern{raw: pattern, re: re})
	return nil
}
