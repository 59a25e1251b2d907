// Package narration contains the domain model and orchestration for
// audio narration generation jobs.
package narration

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a generation job.
type Status string

const (
	// StatusQueued indicates the job has been accepted but not started.
	StatusQueued Status = "queued"
	// StatusProcessing indicates audio is being generated.
	StatusProcessing Status = "processing"
	// StatusCompleted indicates the job finished and outputs are stored.
	StatusCompleted Status = "completed"
	// StatusFailed indicates the job failed; Error holds the reason.
	StatusFailed Status = "failed"
)

// Errors returned by job state transitions.
var (
	ErrInvalidTransition = errors.New("narration: invalid status transition")
	ErrEmptyText         = errors.New("narration: text is required")
	ErrEmptyAuthorID     = errors.New("narration: author id is required")
	ErrEmptyVoiceID      = errors.New("narration: voice id is required")
)

// validTransitions defines the allowed status transitions for a job.
var validTransitions = map[Status][]Status{
	StatusQueued:     {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusCompleted:  {},
	StatusFailed:     {},
}

// VoiceSettings holds TTS voice parameters for a job.
type VoiceSettings struct {
	VoiceID         string  `json:"voice_id"`
	ModelID         string  `json:"model_id,omitempty"`
	Stability       float64 `json:"stability,omitempty"`
	SimilarityBoost float64 `json:"similarity_boost,omitempty"`
	SpeakingRate    float64 `json:"speaking_rate,omitempty"`
}

// EpisodeMeta holds optional metadata describing the resulting episode.
type EpisodeMeta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	PlaylistID  string `json:"playlist_id,omitempty"`
	Published   bool   `json:"published"`
	Free        bool   `json:"free"`
}

// Job represents a single narration generation request and its outputs.
type Job struct {
	ID        string        `json:"id"`
	AuthorID  string        `json:"author_id"`
	Text      string        `json:"text"`
	Voice     VoiceSettings `json:"voice"`
	Episode   EpisodeMeta   `json:"episode,omitempty"`
	Status    Status        `json:"status"`
	Progress  int           `json:"progress"`
	AudioURL  string        `json:"audio_url,omitempty"`
	VTTURL    string        `json:"vtt_url,omitempty"`
	Duration  float64       `json:"duration,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewJob creates a queued job for the given author, text, and voice settings.
func NewJob(authorID, text string, voice VoiceSettings, episode EpisodeMeta) (*Job, error) {
	if authorID == "" {
		return nil, ErrEmptyAuthorID
	}
	if text == "" {
		return nil, ErrEmptyText
	}
	if voice.VoiceID == "" {
		return nil, ErrEmptyVoiceID
	}

	now := time.Now().UTC()
	return &Job{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Text:      text,
		Voice:     voice,
		Episode:   episode,
		Status:    StatusQueued,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// canTransitionTo reports whether the job may move to the target status.
func (j *Job) canTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[j.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// transitionTo moves the job to the target status or fails.
func (j *Job) transitionTo(target Status) error {
	if !j.canTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, target)
	}
	j.Status = target
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// Start marks the job as processing.
func (j *Job) Start() error {
	return j.transitionTo(StatusProcessing)
}

// Complete marks the job as completed with the stored output URLs.
func (j *Job) Complete(audioURL, vttURL string, duration float64) error {
	if err := j.transitionTo(StatusCompleted); err != nil {
		return err
	}
	j.AudioURL = audioURL
	j.VTTURL = vttURL
	j.Duration = duration
	j.Progress = 100
	return nil
}

// Fail marks the job as failed with the given reason.
func (j *Job) Fail(reason string) error {
	if err := j.transitionTo(StatusFailed); err != nil {
		return err
	}
	j.Error = reason
	return nil
}

// SetProgress updates the job progress percentage, clamped to [0, 100].
func (j *Job) SetProgress(progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	j.Progress = progress
	j.UpdatedAt = time.Now().UTC()
}

// IsTerminal reports whether the job has reached a final status.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Clone returns a deep copy of the job.
func (j *Job) Clone() *Job {
	clone := *j
	return &clone
}
