// Package subscription contains paid subscriptions between listeners and
// authors.
package subscription

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Default pricing for a subscription.
const (
	DefaultAmountCents = 250
	DefaultCurrency    = "usd"
)

// Subscription statuses. StatusSelf is virtual: authors always have access
// to their own content without a stored subscription.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusSelf      = "self"
	StatusNone      = "none"
)

// Errors returned by subscription operations.
var (
	ErrSelfSubscription = errors.New("subscription: cannot subscribe to yourself")
	ErrAlreadyExists    = errors.New("subscription: already subscribed")
)

// Subscription is a listener's recurring subscription to an author.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber_id"`
	AuthorID     string    `json:"author_id"`
	Status       string    `json:"status"`
	AmountCents  int       `json:"amount_cents"`
	Currency     string    `json:"currency"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	CreatedAt    time.Time `json:"created_at"`
	CancelledAt  time.Time `json:"cancelled_at,omitzero"`
}

// New creates an active subscription with the default monthly price.
func New(subscriberID, authorID string) (*Subscription, error) {
	if subscriberID == authorID {
		return nil, ErrSelfSubscription
	}

	now := time.Now().UTC()
	return &Subscription{
		ID:           uuid.NewString(),
		SubscriberID: subscriberID,
		AuthorID:     authorID,
		Status:       StatusActive,
		AmountCents:  DefaultAmountCents,
		Currency:     DefaultCurrency,
		PeriodStart:  now,
		PeriodEnd:    now.AddDate(0, 1, 0),
		CreatedAt:    now,
	}, nil
}

// Cancel marks the subscription cancelled. Access lasts until PeriodEnd.
func (s *Subscription) Cancel() {
	s.Status = StatusCancelled
	s.CancelledAt = time.Now().UTC()
}

// Clone returns a deep copy of the subscription.
func (s *Subscription) Clone() *Subscription {
	clone := *s
	return &clone
}
