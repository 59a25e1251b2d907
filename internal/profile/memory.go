package profile

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository.
// It is safe for concurrent use.
type MemoryRepository struct {
	mu        sync.RWMutex
	authors   map[string]*Author
	usernames map[string]string
}

// NewMemoryRepository creates an empty in-memory author repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		authors:   make(map[string]*Author),
		usernames: make(map[string]string),
	}
}

// Create stores a clone of the author, enforcing username uniqueness.
func (r *MemoryRepository) Create(ctx context.Context, author *Author) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.usernames[author.Username]; taken {
		return ErrUsernameTaken
	}
	r.authors[author.ID] = author.Clone()
	r.usernames[author.Username] = author.ID
	return nil
}

// Save updates a stored author.
func (r *MemoryRepository) Save(ctx context.Context, author *Author) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.authors[author.ID]
	if !ok {
		return ErrAuthorNotFound
	}
	if existing.Username != author.Username {
		if _, taken := r.usernames[author.Username]; taken {
			return ErrUsernameTaken
		}
		delete(r.usernames, existing.Username)
		r.usernames[author.Username] = author.ID
	}
	r.authors[author.ID] = author.Clone()
	return nil
}

// Find returns a clone of the stored author, or ErrAuthorNotFound.
func (r *MemoryRepository) Find(ctx context.Context, id string) (*Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	author, ok := r.authors[id]
	if !ok {
		return nil, ErrAuthorNotFound
	}
	return author.Clone(), nil
}

// FindByUsername returns a clone of the author with the given username.
func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usernames[username]
	if !ok {
		return nil, ErrAuthorNotFound
	}
	return r.authors[id].Clone(), nil
}

// FindAll returns clones of all authors ordered by username.
func (r *MemoryRepository) FindAll(ctx context.Context) ([]*Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	authors := make([]*Author, 0, len(r.authors))
	for _, a := range r.authors {
		authors = append(authors, a.Clone())
	}

	sort.Slice(authors, func(i, j int) bool {
		return authors[i].Username < authors[j].Username
	})

	return authors, nil
}

var _ Repository = (*MemoryRepository)(nil)
