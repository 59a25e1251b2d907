package narration

import (
	"context"
	"errors"
)

// ErrJobNotFound is returned when a job does not exist in the repository.
var ErrJobNotFound = errors.New("narration: job not found")

// Repository defines the persistence port for generation jobs.
type Repository interface {
	// Save stores a job, overwriting any existing job with the same ID.
	Save(ctx context.Context, job *Job) error
	// Find returns the job with the given ID, or ErrJobNotFound.
	Find(ctx context.Context, id string) (*Job, error)
	// FindByAuthor returns all jobs belonging to the given author,
	// most recent first.
	FindByAuthor(ctx context.Context, authorID string) ([]*Job, error)
}
