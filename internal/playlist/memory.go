package playlist

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository.
// It is safe for concurrent use.
type MemoryRepository struct {
	mu        sync.RWMutex
	playlists map[string]*Playlist
}

// NewMemoryRepository creates an empty in-memory playlist repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		playlists: make(map[string]*Playlist),
	}
}

// Save stores a clone of the playlist.
func (r *MemoryRepository) Save(ctx context.Context, p *Playlist) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.playlists[p.ID] = p.Clone()
	return nil
}

// Find returns a clone of the stored playlist, or ErrNotFound.
func (r *MemoryRepository) Find(ctx context.Context, id string) (*Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.playlists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// FindByAuthor returns clones of the author's playlists, newest first.
func (r *MemoryRepository) FindByAuthor(ctx context.Context, authorID string) ([]*Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var playlists []*Playlist
	for _, p := range r.playlists {
		if p.AuthorID == authorID {
			playlists = append(playlists, p.Clone())
		}
	}

	sort.Slice(playlists, func(i, j int) bool {
		return playlists[i].CreatedAt.After(playlists[j].CreatedAt)
	})

	return playlists, nil
}

// Delete removes the playlist.
func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.playlists[id]; !ok {
		return ErrNotFound
	}
	delete(r.playlists, id)
	return nil
}

var _ Repository = (*MemoryRepository)(nil)
