package comment

import (
	"context"
	"log/slog"
	"time"
)

// Service provides comment threads, likes, and moderation reports.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a comment service backed by the given repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Post adds a comment to an episode. When parentID is set, the parent must
// exist and belong to the same episode.
func (s *Service) Post(ctx context.Context, episodeID, userID, authorName, authorAvatar, text, parentID string) (*Comment, error) {
	if parentID != "" {
		parent, err := s.repo.FindComment(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent.EpisodeID != episodeID {
			return nil, ErrNotFound
		}
	}

	c, err := New(episodeID, userID, authorName, authorAvatar, text, parentID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveComment(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("comment posted", "comment_id", c.ID, "episode_id", episodeID)
	return c, nil
}

// Threads returns the episode's top-level comments with their replies
// nested, oldest first. Deleted comments appear with empty text so reply
// threads stay intact.
func (s *Service) Threads(ctx context.Context, episodeID string) ([]*Thread, error) {
	comments, err := s.repo.FindByEpisode(ctx, episodeID)
	if err != nil {
		return nil, err
	}

	threads := make([]*Thread, 0)
	byID := make(map[string]*Thread)
	for _, c := range comments {
		if c.Deleted {
			c.Text = ""
		}
		if c.ParentID == "" {
			thread := &Thread{Comment: *c, Replies: []*Comment{}}
			threads = append(threads, thread)
			byID[c.ID] = thread
		}
	}
	for _, c := range comments {
		if c.ParentID == "" {
			continue
		}
		if parent, ok := byID[c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
		}
	}

	return threads, nil
}

// Delete soft-deletes a comment, keeping its position in the thread.
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.FindComment(ctx, id)
	if err != nil {
		return err
	}

	c.Deleted = true
	c.UpdatedAt = time.Now().UTC()
	return s.repo.SaveComment(ctx, c)
}

// ToggleLike flips the user's like on a comment and returns the new state.
func (s *Service) ToggleLike(ctx context.Context, commentID, userID string) (bool, error) {
	return s.repo.ToggleCommentLike(ctx, commentID, userID)
}

// ToggleEpisodeLike flips the user's like on an episode and returns the new
// state together with the episode's like count.
func (s *Service) ToggleEpisodeLike(ctx context.Context, episodeID, userID string) (liked bool, count int, err error) {
	liked, err = s.repo.ToggleEpisodeLike(ctx, episodeID, userID)
	if err != nil {
		return false, 0, err
	}
	count, err = s.repo.EpisodeLikeCount(ctx, episodeID)
	if err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

// EpisodeLiked reports whether the user has liked the episode.
func (s *Service) EpisodeLiked(ctx context.Context, episodeID, userID string) (bool, error) {
	return s.repo.EpisodeLiked(ctx, episodeID, userID)
}

// Report files a pending moderation report against a comment.
func (s *Service) Report(ctx context.Context, commentID, reporterID, reason string) (*Report, error) {
	if _, err := s.repo.FindComment(ctx, commentID); err != nil {
		return nil, err
	}

	r, err := NewReport(commentID, reporterID, reason)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveReport(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("comment reported", "comment_id", commentID, "report_id", r.ID)
	return r, nil
}

// Reports returns all moderation reports, newest first.
func (s *Service) Reports(ctx context.Context) ([]*Report, error) {
	return s.repo.Reports(ctx)
}
