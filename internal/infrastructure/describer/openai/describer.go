package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/kirillkom/screenshot-organizer/internal/core/domain"
)

const maxTokens = 500

const promptTemplate = `Analyze this screenshot and determine:
1. Category: %s
2. Main content description (brief, 1-2 sentences)
3. Suggested filename (descriptive, no spaces, lowercase with underscores)
4. Confidence in the category (0.0-1.0)

Return ONLY valid JSON in this exact format:
{"category": "code", "description": "Brief description here", "filename": "descriptive_name_here", "confidence": 0.8}

Categories must be one of: %s`

// Describer sends a screenshot to an OpenAI-compatible vision model and
// parses the structured classification hint out of the reply. Vision calls
// carry external compute cost; a rate limiter gates every request.
type Describer struct {
	client     *openai.Client
	model      string
	categories *domain.CategorySet
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewDescriber(apiKey, baseURL, model string, categories *domain.CategorySet, limiter *rate.Limiter, logger *slog.Logger) *Describer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Describer{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		categories: categories,
		limiter:    limiter,
		logger:     logger,
	}
}

func (d *Describer) Describe(ctx context.Context, imagePath string) (domain.Description, error) {
	dataURL, err := encodeImage(imagePath)
	if err != nil {
		return domain.Description{}, err
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return domain.Description{}, fmt.Errorf("vision rate limiter: %w", err)
	}

	start := time.Now()
	names := strings.Join(d.categories.Names(), ", ")
	req := openai.ChatCompletionRequest{
		Model:     d.model,
		MaxTokens: maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: fmt.Sprintf(promptTemplate, names, names),
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.Description{}, domain.WrapError(domain.ErrTemporary, "vision chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Description{}, domain.WrapError(domain.ErrDescriptionFormat, "vision chat completion", fmt.Errorf("empty choices"))
	}

	description, err := d.parseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return domain.Description{}, err
	}

	d.logger.Debug("vision description complete",
		"path", imagePath,
		"category", description.Category,
		"elapsed_ms", float64(time.Since(start).Microseconds())/1000)
	return description, nil
}

var extensionMIME = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
}

func encodeImage(imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.WrapError(domain.ErrFileNotFound, "read image", err)
		}
		return "", fmt.Errorf("read image: %w", err)
	}

	mimeType := extensionMIME[strings.ToLower(filepath.Ext(imagePath))]
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
