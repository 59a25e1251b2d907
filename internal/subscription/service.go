package subscription

import (
	"context"
	"errors"
	"log/slog"
)

// Service provides subscription creation, cancellation, and access checks.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a subscription service backed by the given repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Subscribe creates an active subscription from subscriber to author.
// A second active subscription to the same author is refused.
func (s *Service) Subscribe(ctx context.Context, subscriberID, authorID string) (*Subscription, error) {
	existing, err := s.repo.FindBetween(ctx, subscriberID, authorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == StatusActive {
		return nil, ErrAlreadyExists
	}

	sub, err := New(subscriberID, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription created",
		"subscription_id", sub.ID,
		"subscriber_id", subscriberID,
		"author_id", authorID,
	)
	return sub, nil
}

// Cancel cancels the subscription with the given ID.
func (s *Service) Cancel(ctx context.Context, id string) (*Subscription, error) {
	sub, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	sub.Cancel()
	if err := s.repo.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription cancelled", "subscription_id", id)
	return sub, nil
}

// Check returns the subscription status between subscriber and author.
// Authors checking themselves always get StatusSelf; listeners without a
// subscription get StatusNone.
func (s *Service) Check(ctx context.Context, subscriberID, authorID string) (string, error) {
	if subscriberID == authorID {
		return StatusSelf, nil
	}

	sub, err := s.repo.FindBetween(ctx, subscriberID, authorID)
	if errors.Is(err, ErrNotFound) {
		return StatusNone, nil
	}
	if err != nil {
		return "", err
	}
	return sub.Status, nil
}
