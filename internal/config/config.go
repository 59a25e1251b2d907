// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// ErrElevenLabsAPIKeyRequired is returned when ELEVENLABS_API_KEY is not set.
var ErrElevenLabsAPIKeyRequired = errors.New("config: ELEVENLABS_API_KEY is required")

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// ElevenLabs settings
	ElevenLabsAPIKey  string `env:"ELEVENLABS_API_KEY, required" json:"-"` // Masked in JSON
	ElevenLabsBaseURL string `env:"ELEVENLABS_BASE_URL" json:"elevenlabs_base_url,omitempty"`

	// Storage settings
	TempDir    string `env:"TEMP_DIR, default=/tmp/vox-platform" json:"temp_dir"`
	FFmpegPath string `env:"FFMPEG_PATH" json:"ffmpeg_path,omitempty"`

	// Caption timing settings (milliseconds)
	CaptionLeadInMs       int `env:"CAPTION_LEAD_IN_MS, default=50" json:"caption_lead_in_ms"`
	CaptionLeadOutMs      int `env:"CAPTION_LEAD_OUT_MS, default=120" json:"caption_lead_out_ms"`
	CaptionSentenceGapMs  int `env:"CAPTION_SENTENCE_GAP_MS, default=150" json:"caption_sentence_gap_ms"`
	CaptionParagraphGapMs int `env:"CAPTION_PARAGRAPH_GAP_MS, default=600" json:"caption_paragraph_gap_ms"`

	// Optional S3 settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		if strings.Contains(err.Error(), "ELEVENLABS_API_KEY") {
			return nil, ErrElevenLabsAPIKeyRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.ElevenLabsAPIKey == "" {
		return ErrElevenLabsAPIKeyRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, TempDir: %s, CaptionLeadInMs: %d, CaptionLeadOutMs: %d, CaptionSentenceGapMs: %d, CaptionParagraphGapMs: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.TempDir,
		c.CaptionLeadInMs,
		c.CaptionLeadOutMs,
		c.CaptionSentenceGapMs,
		c.CaptionParagraphGapMs,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
