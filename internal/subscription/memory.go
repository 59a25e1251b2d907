package subscription

import (
	"context"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository.
// It is safe for concurrent use.
type MemoryRepository struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
}

// NewMemoryRepository creates an empty in-memory subscription repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		subscriptions: make(map[string]*Subscription),
	}
}

// Save stores a clone of the subscription.
func (r *MemoryRepository) Save(ctx context.Context, s *Subscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.subscriptions[s.ID] = s.Clone()
	return nil
}

// Find returns a clone of the stored subscription, or ErrNotFound.
func (r *MemoryRepository) Find(ctx context.Context, id string) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.subscriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// FindBetween returns the subscription from subscriber to author.
func (r *MemoryRepository) FindBetween(ctx context.Context, subscriberID, authorID string) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.subscriptions {
		if s.SubscriberID == subscriberID && s.AuthorID == authorID {
			return s.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

var _ Repository = (*MemoryRepository)(nil)
