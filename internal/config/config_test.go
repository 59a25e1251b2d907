package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "test-api-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.ElevenLabsAPIKey != "test-api-key" {
		t.Errorf("ElevenLabsAPIKey = %q, want %q", cfg.ElevenLabsAPIKey, "test-api-key")
	}
	if cfg.TempDir != "/tmp/vox-platform" {
		t.Errorf("TempDir = %q, want %q", cfg.TempDir, "/tmp/vox-platform")
	}
	if cfg.CaptionLeadInMs != 50 {
		t.Errorf("CaptionLeadInMs = %d, want 50", cfg.CaptionLeadInMs)
	}
	if cfg.CaptionLeadOutMs != 120 {
		t.Errorf("CaptionLeadOutMs = %d, want 120", cfg.CaptionLeadOutMs)
	}
	if cfg.CaptionSentenceGapMs != 150 {
		t.Errorf("CaptionSentenceGapMs = %d, want 150", cfg.CaptionSentenceGapMs)
	}
	if cfg.CaptionParagraphGapMs != 600 {
		t.Errorf("CaptionParagraphGapMs = %d, want 600", cfg.CaptionParagraphGapMs)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, want %q", cfg.LogFormat, "text")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "test-api-key")
	t.Setenv("PORT", "9090")
	t.Setenv("TEMP_DIR", "/var/tmp/vox")
	t.Setenv("CAPTION_LEAD_IN_MS", "100")
	t.Setenv("S3_BUCKET", "vox-media")
	t.Setenv("S3_REGION", "eu-west-2")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.TempDir != "/var/tmp/vox" {
		t.Errorf("TempDir = %q, want %q", cfg.TempDir, "/var/tmp/vox")
	}
	if cfg.CaptionLeadInMs != 100 {
		t.Errorf("CaptionLeadInMs = %d, want 100", cfg.CaptionLeadInMs)
	}
	if !cfg.S3Enabled() {
		t.Error("S3Enabled() = false, want true")
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "placeholder")
	os.Unsetenv("ELEVENLABS_API_KEY")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want error for missing API key")
	}
}

func TestS3Enabled(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		region string
		want   bool
	}{
		{"both set", "vox-media", "eu-west-2", true},
		{"bucket only", "vox-media", "", false},
		{"region only", "", "eu-west-2", false},
		{"neither", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{S3Bucket: tt.bucket, S3Region: tt.region}
			if got := cfg.S3Enabled(); got != tt.want {
				t.Errorf("S3Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{ElevenLabsAPIKey: "key"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	cfg = &Config{}
	if err := cfg.Validate(); err != ErrElevenLabsAPIKeyRequired {
		t.Errorf("Validate() error = %v, want ErrElevenLabsAPIKeyRequired", err)
	}
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := &Config{
		Port:               8080,
		ElevenLabsAPIKey:   "super-secret-key",
		AWSSecretAccessKey: "aws-secret",
	}

	s := cfg.String()
	if strings.Contains(s, "super-secret-key") {
		t.Error("String() leaks ElevenLabsAPIKey")
	}
	if strings.Contains(s, "aws-secret") {
		t.Error("String() leaks AWSSecretAccessKey")
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		logFormat string
		logLevel  string
	}{
		{"json format", "json", "debug"},
		{"text format", "text", "info"},
		{"default level", "text", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogFormat: tt.logFormat, LogLevel: tt.logLevel}
			logger := cfg.NewLogger()
			if logger == nil {
				t.Fatal("NewLogger() returned nil")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
