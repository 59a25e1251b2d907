package playlist

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a playlist does not exist.
var ErrNotFound = errors.New("playlist: not found")

// Repository defines the persistence port for playlists.
type Repository interface {
	// Save stores a playlist, overwriting any existing one with the same ID.
	Save(ctx context.Context, p *Playlist) error
	// Find returns the playlist with the given ID, or ErrNotFound.
	Find(ctx context.Context, id string) (*Playlist, error)
	// FindByAuthor returns all playlists of the author, newest first.
	FindByAuthor(ctx context.Context, authorID string) ([]*Playlist, error)
	// Delete removes the playlist, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}
