package profile

import (
	"context"
	"errors"
)

// Errors returned by the repository.
var (
	ErrAuthorNotFound = errors.New("profile: author not found")
	ErrUsernameTaken  = errors.New("profile: username already taken")
)

// Repository defines the persistence port for author profiles.
type Repository interface {
	// Create stores a new author. Returns ErrUsernameTaken when the
	// username is already in use.
	Create(ctx context.Context, author *Author) error
	// Save updates an existing author.
	Save(ctx context.Context, author *Author) error
	// Find returns the author with the given ID, or ErrAuthorNotFound.
	Find(ctx context.Context, id string) (*Author, error)
	// FindByUsername returns the author with the given username,
	// or ErrAuthorNotFound.
	FindByUsername(ctx context.Context, username string) (*Author, error)
	// FindAll returns all authors ordered by username.
	FindAll(ctx context.Context) ([]*Author, error)
}
