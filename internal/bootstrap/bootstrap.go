// Package bootstrap provides dependency initialization for the platform.
package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/vox-platform/vox-api/internal/audio"
	"github.com/vox-platform/vox-api/internal/captions"
	"github.com/vox-platform/vox-api/internal/comment"
	"github.com/vox-platform/vox-api/internal/config"
	"github.com/vox-platform/vox-api/internal/elevenlabs"
	"github.com/vox-platform/vox-api/internal/narration"
	"github.com/vox-platform/vox-api/internal/playlist"
	"github.com/vox-platform/vox-api/internal/profile"
	"github.com/vox-platform/vox-api/internal/storage"
	"github.com/vox-platform/vox-api/internal/subscription"
)

// Dependencies holds the initialized services for the HTTP server.
type Dependencies struct {
	Narration     *narration.Service
	Profiles      *profile.Service
	Playlists     *playlist.Service
	Comments      *comment.Service
	Subscriptions *subscription.Service
}

// NewDependencies creates and wires all application dependencies.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	ttsOpts := []elevenlabs.ClientOption{elevenlabs.WithAPIKey(cfg.ElevenLabsAPIKey)}
	if cfg.ElevenLabsBaseURL != "" {
		ttsOpts = append(ttsOpts, elevenlabs.WithBaseURL(cfg.ElevenLabsBaseURL))
	}
	tts, err := elevenlabs.NewClient(ttsOpts...)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}

	ffmpeg := audio.NewFFmpeg(cfg.FFmpegPath)

	profiles := profile.NewService(profile.NewMemoryRepository(), logger)
	playlists := playlist.NewService(playlist.NewMemoryRepository(), logger)
	comments := comment.NewService(comment.NewMemoryRepository(), logger)
	subscriptions := subscription.NewService(subscription.NewMemoryRepository(), logger)

	narrationSvc := narration.NewService(
		narration.NewMemoryRepository(),
		tts,
		store,
		ffmpeg,
		ffmpeg,
		profiles,
		narration.ServiceConfig{
			Timeline: captions.TimelineConfig{
				LeadInMs:       cfg.CaptionLeadInMs,
				LeadOutMs:      cfg.CaptionLeadOutMs,
				SentenceGapMs:  cfg.CaptionSentenceGapMs,
				ParagraphGapMs: cfg.CaptionParagraphGapMs,
			},
		},
		logger,
	)
	narrationSvc.AttachPlaylists(playlists)

	return &Dependencies{
		Narration:     narrationSvc,
		Profiles:      profiles,
		Playlists:     playlists,
		Comments:      comments,
		Subscriptions: subscriptions,
	}, nil
}

// initStorage creates the storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			"bucket", cfg.S3Bucket,
			"region", cfg.S3Region,
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured", "temp_dir", cfg.TempDir)
	return localStore, nil
}
