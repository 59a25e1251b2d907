package comment

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a comment does not exist.
var ErrNotFound = errors.New("comment: not found")

// Repository defines the persistence port for comments, likes, and reports.
type Repository interface {
	// SaveComment stores a comment, overwriting any existing one with the
	// same ID.
	SaveComment(ctx context.Context, c *Comment) error
	// FindComment returns the comment with the given ID, or ErrNotFound.
	FindComment(ctx context.Context, id string) (*Comment, error)
	// FindByEpisode returns all comments on the episode, oldest first.
	FindByEpisode(ctx context.Context, episodeID string) ([]*Comment, error)

	// ToggleCommentLike flips the user's like on a comment and returns the
	// resulting liked state.
	ToggleCommentLike(ctx context.Context, commentID, userID string) (liked bool, err error)
	// ToggleEpisodeLike flips the user's like on an episode and returns the
	// resulting liked state.
	ToggleEpisodeLike(ctx context.Context, episodeID, userID string) (liked bool, err error)
	// EpisodeLiked reports whether the user has liked the episode.
	EpisodeLiked(ctx context.Context, episodeID, userID string) (bool, error)
	// EpisodeLikeCount returns the number of likes on the episode.
	EpisodeLikeCount(ctx context.Context, episodeID string) (int, error)

	// SaveReport stores a moderation report.
	SaveReport(ctx context.Context, r *Report) error
	// Reports returns all stored reports, newest first.
	Reports(ctx context.Context) ([]*Report, error)
}
