package comment

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory implementation of Repository.
// It is safe for concurrent use.
type MemoryRepository struct {
	mu           sync.RWMutex
	comments     map[string]*Comment
	commentLikes map[string]map[string]bool
	episodeLikes map[string]map[string]bool
	reports      []*Report
}

// NewMemoryRepository creates an empty in-memory comment repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		comments:     make(map[string]*Comment),
		commentLikes: make(map[string]map[string]bool),
		episodeLikes: make(map[string]map[string]bool),
	}
}

// SaveComment stores a clone of the comment.
func (r *MemoryRepository) SaveComment(ctx context.Context, c *Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.comments[c.ID] = c.Clone()
	return nil
}

// FindComment returns a clone of the stored comment, or ErrNotFound.
func (r *MemoryRepository) FindComment(ctx context.Context, id string) (*Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}

// FindByEpisode returns clones of the episode's comments, oldest first.
func (r *MemoryRepository) FindByEpisode(ctx context.Context, episodeID string) ([]*Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var comments []*Comment
	for _, c := range r.comments {
		if c.EpisodeID == episodeID {
			comments = append(comments, c.Clone())
		}
	}

	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})

	return comments, nil
}

// ToggleCommentLike flips the user's like and updates the like count.
func (r *MemoryRepository) ToggleCommentLike(ctx context.Context, commentID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[commentID]
	if !ok {
		return false, ErrNotFound
	}

	likes := r.commentLikes[commentID]
	if likes == nil {
		likes = make(map[string]bool)
		r.commentLikes[commentID] = likes
	}

	if likes[userID] {
		delete(likes, userID)
		c.LikeCount--
		return false, nil
	}
	likes[userID] = true
	c.LikeCount++
	return true, nil
}

// ToggleEpisodeLike flips the user's like on an episode.
func (r *MemoryRepository) ToggleEpisodeLike(ctx context.Context, episodeID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	likes := r.episodeLikes[episodeID]
	if likes == nil {
		likes = make(map[string]bool)
		r.episodeLikes[episodeID] = likes
	}

	if likes[userID] {
		delete(likes, userID)
		return false, nil
	}
	likes[userID] = true
	return true, nil
}

// EpisodeLiked reports whether the user has liked the episode.
func (r *MemoryRepository) EpisodeLiked(ctx context.Context, episodeID, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.episodeLikes[episodeID][userID], nil
}

// EpisodeLikeCount returns the number of likes on the episode.
func (r *MemoryRepository) EpisodeLikeCount(ctx context.Context, episodeID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.episodeLikes[episodeID]), nil
}

// SaveReport stores the report.
func (r *MemoryRepository) SaveReport(ctx context.Context, report *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.reports = append(r.reports, report)
	return nil
}

// Reports returns all stored reports, newest first.
func (r *MemoryRepository) Reports(ctx context.Context) ([]*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	reports := make([]*Report, len(r.reports))
	copy(reports, r.reports)

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].CreatedAt.After(reports[j].CreatedAt)
	})

	return reports, nil
}

var _ Repository = (*MemoryRepository)(nil)
