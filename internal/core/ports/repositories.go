package ports

import (
	"context"

	"vidhub/internal/core/domain"
)

// UserMutation mutates a pair of users loaded under the store's concurrency
// control. Returning an error discards both changes.
type UserMutation func(a, b *domain.User) error

type VideoMutation func(v *domain.Video) error

type CommentMutation func(c *domain.Comment) error

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]*domain.User, error)
	// UpdatePair applies fn to users a and b and persists both or neither.
	UpdatePair(ctx context.Context, a, b domain.UserID, fn UserMutation) (*domain.User, *domain.User, error)
}

type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error)
	Update(ctx context.Context, id domain.VideoID, fn VideoMutation) (*domain.Video, error)
	IncrementViews(ctx context.Context, id domain.VideoID) (*domain.Video, error)
	Delete(ctx context.Context, id domain.VideoID) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id domain.CommentID) (*domain.Comment, error)
	// ListByVideo returns comments ordered by creation time, oldest first.
	ListByVideo(ctx context.Context, videoID domain.VideoID) ([]*domain.Comment, error)
	Update(ctx context.Context, id domain.CommentID, fn CommentMutation) (*domain.Comment, error)
	Delete(ctx context.Context, id domain.CommentID) error
	DeleteByVideo(ctx context.Context, videoID domain.VideoID) (int64, error)
}
