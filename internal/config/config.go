package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	LogLevel string

	BaseFolder    string
	KeepOriginals bool

	MinWordsThreshold   int
	SupportedExtensions []string
	CategoriesFile      string

	TesseractBinary   string
	TesseractLanguage string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	VisionModel   string
	VisionRPS     float64
	VisionBurst   int

	MetricsPort string
}

func Load() Config {
	return Config{
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		BaseFolder:    mustEnv("SCREENSHOTS_BASE_FOLDER", "./data/screenshots"),
		KeepOriginals: mustEnvBool("SCREENSHOTS_KEEP_ORIGINALS", true),

		MinWordsThreshold:   mustEnvInt("OCR_MIN_WORDS_THRESHOLD", 10),
		SupportedExtensions: splitList(mustEnv("SCREENSHOTS_EXTENSIONS", ".png,.jpg,.jpeg,.gif,.bmp,.tiff")),
		CategoriesFile:      mustEnv("CATEGORIES_FILE", ""),

		TesseractBinary:   mustEnv("TESSERACT_BINARY", "tesseract"),
		TesseractLanguage: mustEnv("TESSERACT_LANGUAGE", "eng"),

		OpenAIAPIKey:  mustEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: mustEnv("OPENAI_BASE_URL", ""),
		VisionModel:   mustEnv("VISION_MODEL", "gpt-4o-mini"),
		VisionRPS:     mustEnvFloat("VISION_REQUESTS_PER_SECOND", 1),
		VisionBurst:   mustEnvInt("VISION_BURST", 1),

		MetricsPort: mustEnv("METRICS_PORT", ""),
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, ".") {
			p = "." + p
		}
		out = append(out, strings.ToLower(p))
	}
	return out
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
