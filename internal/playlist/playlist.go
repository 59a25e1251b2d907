// Package playlist contains author playlists that group published episodes.
package playlist

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Errors returned by playlist operations.
var (
	ErrEmptyTitle    = errors.New("playlist: title is required")
	ErrEmptyAuthorID = errors.New("playlist: author id is required")
	ErrNotEmpty      = errors.New("playlist: playlist still has episodes")
)

// Playlist is a named collection of an author's episodes.
type Playlist struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	CoverURL     string    `json:"cover_url,omitempty"`
	Published    bool      `json:"published"`
	EpisodeCount int       `json:"episode_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// New creates a playlist for the given author.
func New(authorID, title, description string) (*Playlist, error) {
	if authorID == "" {
		return nil, ErrEmptyAuthorID
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()
	return &Playlist{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Clone returns a deep copy of the playlist.
func (p *Playlist) Clone() *Playlist {
	clone := *p
	return &clone
}
