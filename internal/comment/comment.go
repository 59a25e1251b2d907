// Package comment contains episode comments, likes, and moderation reports.
package comment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Errors returned by comment operations.
var (
	ErrEmptyText      = errors.New("comment: text is required")
	ErrEmptyEpisodeID = errors.New("comment: episode id is required")
	ErrEmptyUserID    = errors.New("comment: user id is required")
	ErrEmptyReason    = errors.New("comment: report reason is required")
)

// ReportStatusPending marks reports awaiting moderation.
const ReportStatusPending = "pending"

// Comment is a user comment on an episode, optionally replying to another
// comment. Deleted comments keep their place in a thread but lose content.
type Comment struct {
	ID           string    `json:"id"`
	EpisodeID    string    `json:"episode_id"`
	UserID       string    `json:"user_id"`
	AuthorName   string    `json:"author_name,omitempty"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	Text         string    `json:"text"`
	ParentID     string    `json:"parent_id,omitempty"`
	LikeCount    int       `json:"like_count"`
	Deleted      bool      `json:"deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Thread is a top-level comment together with its direct replies.
type Thread struct {
	Comment
	Replies []*Comment `json:"replies"`
}

// Report is a user-submitted moderation report against a comment.
type Report struct {
	ID         string    `json:"id"`
	CommentID  string    `json:"comment_id"`
	ReporterID string    `json:"reporter_id"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// New creates a comment on an episode. parentID may be empty for a
// top-level comment.
func New(episodeID, userID, authorName, authorAvatar, text, parentID string) (*Comment, error) {
	if episodeID == "" {
		return nil, ErrEmptyEpisodeID
	}
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	if text == "" {
		return nil, ErrEmptyText
	}

	now := time.Now().UTC()
	return &Comment{
		ID:           uuid.NewString(),
		EpisodeID:    episodeID,
		UserID:       userID,
		AuthorName:   authorName,
		AuthorAvatar: authorAvatar,
		Text:         text,
		ParentID:     parentID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewReport creates a pending moderation report.
func NewReport(commentID, reporterID, reason string) (*Report, error) {
	if reason == "" {
		return nil, ErrEmptyReason
	}

	return &Report{
		ID:         uuid.NewString(),
		CommentID:  commentID,
		ReporterID: reporterID,
		Reason:     reason,
		Status:     ReportStatusPending,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Clone returns a deep copy of the comment.
func (c *Comment) Clone() *Comment {
	clone := *c
	return &clone
}
