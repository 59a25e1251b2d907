// Package server provides the HTTP API for the platform. It contains
// handlers, middleware, routes, and request/response DTOs kept separate
// from the domain types.
package server

import (
	"github.com/vox-platform/vox-api/internal/narration"
	"github.com/vox-platform/vox-api/internal/profile"
)

// GenerateRequest is the request body for starting a narration job.
type GenerateRequest struct {
	// Text is the script to narrate.
	Text string `json:"text" validate:"required,max=100000"`
	// VoiceID selects the provider voice.
	VoiceID string `json:"voice_id" validate:"required"`
	// ModelID overrides the default synthesis model.
	ModelID string `json:"model_id,omitempty"`
	// Stability tunes delivery variance (0..1).
	Stability float64 `json:"stability,omitempty" validate:"min=0,max=1"`
	// SimilarityBoost tunes voice similarity (0..1).
	SimilarityBoost float64 `json:"similarity_boost,omitempty" validate:"min=0,max=1"`
	// SpeakingRate is the speed multiplier.
	SpeakingRate float64 `json:"speaking_rate,omitempty" validate:"omitempty,min=0.25,max=4"`
	// Episode carries optional episode metadata.
	Episode EpisodeRequest `json:"episode,omitempty"`
}

// EpisodeRequest is the episode metadata portion of a generate request.
type EpisodeRequest struct {
	Title       string `json:"title,omitempty" validate:"max=200"`
	Description string `json:"description,omitempty" validate:"max=5000"`
	CoverURL    string `json:"cover_url,omitempty" validate:"omitempty,url"`
	PlaylistID  string `json:"playlist_id,omitempty"`
	Published   bool   `json:"published"`
	Free        bool   `json:"free"`
}

// JobResponse describes a narration job and its outputs.
type JobResponse struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Progress int     `json:"progress"`
	AudioURL string  `json:"audio_url,omitempty"`
	VTTURL   string  `json:"vtt_url,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// jobResponseFrom maps a domain job to its API shape.
func jobResponseFrom(job *narration.Job) JobResponse {
	return JobResponse{
		ID:       job.ID,
		Status:   string(job.Status),
		Progress: job.Progress,
		AudioURL: job.AudioURL,
		VTTURL:   job.VTTURL,
		Duration: job.Duration,
		Error:    job.Error,
	}
}

// CreditsResponse reports an author's remaining credit balance.
type CreditsResponse struct {
	AuthorID string `json:"author_id"`
	Credits  int    `json:"credits"`
	Limit    int    `json:"limit"`
	ResetsAt string `json:"resets_at"`
}

// CreateAuthorRequest is the request body for registering an author.
type CreateAuthorRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=30,alphanum"`
	DisplayName string `json:"display_name,omitempty" validate:"max=100"`
	Bio         string `json:"bio,omitempty" validate:"max=1000"`
}

// UpdateAuthorRequest is the request body for editing an author profile.
type UpdateAuthorRequest struct {
	DisplayName string `json:"display_name,omitempty" validate:"max=100"`
	Bio         string `json:"bio,omitempty" validate:"max=1000"`
}

// AuthorResponse describes an author profile.
type AuthorResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Subscribers int    `json:"subscribers"`
}

// authorResponseFrom maps a domain author to its API shape.
func authorResponseFrom(a *profile.Author) AuthorResponse {
	return AuthorResponse{
		ID:          a.ID,
		Username:    a.Username,
		DisplayName: a.DisplayName,
		Bio:         a.Bio,
		AvatarURL:   a.AvatarURL,
		Subscribers: a.Subscribers,
	}
}

// CreatePlaylistRequest is the request body for creating a playlist.
type CreatePlaylistRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// UpdatePlaylistRequest is the request body for editing a playlist.
type UpdatePlaylistRequest struct {
	Title       string `json:"title,omitempty" validate:"max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	CoverURL    string `json:"cover_url,omitempty" validate:"omitempty,url"`
	Published   bool   `json:"published"`
}

// CreateCommentRequest is the request body for posting a comment.
type CreateCommentRequest struct {
	EpisodeID    string `json:"episode_id" validate:"required"`
	UserID       string `json:"user_id" validate:"required"`
	AuthorName   string `json:"author_name,omitempty" validate:"max=100"`
	AuthorAvatar string `json:"author_avatar,omitempty" validate:"omitempty,url"`
	Text         string `json:"text" validate:"required,max=5000"`
	ParentID     string `json:"parent_id,omitempty"`
}

// LikeRequest identifies the user toggling a like.
type LikeRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

// LikeResponse reports the resulting like state.
type LikeResponse struct {
	Liked bool `json:"liked"`
	Count int  `json:"count,omitempty"`
}

// ReportRequest is the request body for reporting a comment.
type ReportRequest struct {
	ReporterID string `json:"reporter_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,max=1000"`
}

// SubscribeRequest is the request body for creating a subscription.
type SubscribeRequest struct {
	SubscriberID string `json:"subscriber_id" validate:"required"`
	AuthorID     string `json:"author_id" validate:"required"`
}

// SubscriptionStatusResponse reports the relationship between a listener
// and an author.
type SubscriptionStatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}
