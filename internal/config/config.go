// Package config provides the explicit configuration object constructed at
// startup and passed into component constructors. No ambient globals.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/khmercorpus/bitext-extractor/internal/domain"
)

// EnvAPIKey is the one required credential variable.
const EnvAPIKey = "GENAI_API_KEY"

// SupportedModels is the allow-list for both the extraction and detection
// model flags.
var SupportedModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

// Config holds all runtime settings for a batch run.
type Config struct {
	APIKey          string
	ExtractionModel string
	DetectionModel  string
	OutputPath      string

	PageCap     int
	DPI         float64
	JPEGQuality int

	MemoryThreshold    float64 // percent, pages wait above this
	MemoryPollInterval time.Duration
	PageDelay          time.Duration
	RequestTimeout     time.Duration
	DownloadTimeout    time.Duration
}

// Load reads configuration from the environment, with .env support.
func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	return &Config{
		APIKey:             os.Getenv(EnvAPIKey),
		ExtractionModel:    envOrDefault("EXTRACTION_MODEL", "gemini-1.5-flash"),
		DetectionModel:     envOrDefault("DETECTION_MODEL", "gemini-1.5-flash"),
		OutputPath:         os.Getenv("OUTPUT_CSV"),
		PageCap:            envIntOrDefault("PAGE_CAP", 20),
		DPI:                150,
		JPEGQuality:        85,
		MemoryThreshold:    85.0,
		MemoryPollInterval: 6 * time.Second,
		PageDelay:          1 * time.Second,
		RequestTimeout:     120 * time.Second,
		DownloadTimeout:    60 * time.Second,
	}
}

// Validate checks the credential and the model allow-list.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return domain.ConfigError(fmt.Sprintf("%s not set; set it in your environment or .env file", EnvAPIKey), nil)
	}
	if !IsSupportedModel(c.ExtractionModel) {
		return domain.ConfigError(fmt.Sprintf("unsupported extraction model %q, choose one of %v", c.ExtractionModel, SupportedModels), nil)
	}
	if !IsSupportedModel(c.DetectionModel) {
		return domain.ConfigError(fmt.Sprintf("unsupported detection model %q, choose one of %v", c.DetectionModel, SupportedModels), nil)
	}
	if c.MemoryThreshold <= 0 || c.MemoryThreshold > 100 {
		return domain.ConfigError(fmt.Sprintf("memory threshold must be in (0, 100], got %.1f", c.MemoryThreshold), nil)
	}
	if c.DPI < 36 || c.DPI > 600 {
		return domain.ConfigError(fmt.Sprintf("dpi must be in [36, 600], got %.0f", c.DPI), nil)
	}
	return nil
}

// IsSupportedModel reports whether model is on the allow-list.
func IsSupportedModel(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
