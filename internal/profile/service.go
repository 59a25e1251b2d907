package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service provides author profile management and credit accounting.
// Monthly credit resets are applied lazily whenever an author is read.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a profile service backed by the given repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new author.
func (s *Service) Create(ctx context.Context, username, displayName, bio string) (*Author, error) {
	author, err := NewAuthor(username, displayName, bio)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, author); err != nil {
		return nil, err
	}

	s.logger.Info("author created", "author_id", author.ID, "username", username)
	return author, nil
}

// Get returns the author with the given ID, applying any due credit reset.
func (s *Service) Get(ctx context.Context, id string) (*Author, error) {
	author, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.refreshed(ctx, author)
}

// GetByUsername returns the author with the given username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*Author, error) {
	author, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.refreshed(ctx, author)
}

// List returns all authors ordered by username.
func (s *Service) List(ctx context.Context) ([]*Author, error) {
	return s.repo.FindAll(ctx)
}

// Update modifies the author's display name and bio.
func (s *Service) Update(ctx context.Context, id, displayName, bio string) (*Author, error) {
	author, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	author.DisplayName = displayName
	author.Bio = bio
	author.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

// CanAfford reports whether the author has at least chars credits.
func (s *Service) CanAfford(ctx context.Context, authorID string, chars int) (bool, error) {
	author, err := s.Get(ctx, authorID)
	if err != nil {
		return false, err
	}
	return author.CanAfford(chars), nil
}

// Charge deducts chars credits from the author.
func (s *Service) Charge(ctx context.Context, authorID string, chars int) error {
	author, err := s.Get(ctx, authorID)
	if err != nil {
		return err
	}
	if err := author.Charge(chars); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, author); err != nil {
		return fmt.Errorf("saving author: %w", err)
	}

	s.logger.Info("credits charged",
		"author_id", authorID,
		"chars", chars,
		"remaining", author.Credits,
	)
	return nil
}

// refreshed applies a due monthly reset and persists it.
func (s *Service) refreshed(ctx context.Context, author *Author) (*Author, error) {
	if !author.ResetCreditsIfDue(s.now()) {
		return author, nil
	}
	if err := s.repo.Save(ctx, author); err != nil {
		return nil, fmt.Errorf("saving credit reset: %w", err)
	}
	s.logger.Info("credits reset", "author_id", author.ID)
	return author, nil
}
