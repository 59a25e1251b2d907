package subscription

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a subscription does not exist.
var ErrNotFound = errors.New("subscription: not found")

// Repository defines the persistence port for subscriptions.
type Repository interface {
	// Save stores a subscription, overwriting any existing one with the
	// same ID.
	Save(ctx context.Context, s *Subscription) error
	// Find returns the subscription with the given ID, or ErrNotFound.
	Find(ctx context.Context, id string) (*Subscription, error)
	// FindBetween returns the subscription from subscriber to author,
	// or ErrNotFound.
	FindBetween(ctx context.Context, subscriberID, authorID string) (*Subscription, error)
}
