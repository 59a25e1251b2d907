package playlist

import (
	"context"
	"log/slog"
	"time"
)

// Service provides playlist management for authors.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a playlist service backed by the given repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Create adds a new playlist for the author.
func (s *Service) Create(ctx context.Context, authorID, title, description string) (*Playlist, error) {
	p, err := New(authorID, title, description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("playlist created", "playlist_id", p.ID, "author_id", authorID)
	return p, nil
}

// Get returns the playlist with the given ID.
func (s *Service) Get(ctx context.Context, id string) (*Playlist, error) {
	return s.repo.Find(ctx, id)
}

// ListByAuthor returns all playlists of the author, newest first.
func (s *Service) ListByAuthor(ctx context.Context, authorID string) ([]*Playlist, error) {
	return s.repo.FindByAuthor(ctx, authorID)
}

// Update modifies the playlist's title, description, cover, and published flag.
func (s *Service) Update(ctx context.Context, id, title, description, coverURL string, published bool) (*Playlist, error) {
	p, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if title != "" {
		p.Title = title
	}
	p.Description = description
	p.CoverURL = coverURL
	p.Published = published
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes an empty playlist. Playlists that still contain episodes
// are refused with ErrNotEmpty.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.repo.Find(ctx, id)
	if err != nil {
		return err
	}
	if p.EpisodeCount > 0 {
		return ErrNotEmpty
	}
	return s.repo.Delete(ctx, id)
}

// EpisodeAdded increments the playlist's episode count. The narration
// service calls this when a published episode lands in a playlist.
func (s *Service) EpisodeAdded(ctx context.Context, playlistID string) error {
	p, err := s.repo.Find(ctx, playlistID)
	if err != nil {
		return err
	}
	p.EpisodeCount++
	p.UpdatedAt = time.Now().UTC()
	return s.repo.Save(ctx, p)
}
