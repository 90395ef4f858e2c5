package ports

import (
	"context"

	"vidhub/internal/core/domain"
)

type SignupInput struct {
	ChannelName string
	Email       string
	Phone       string
	Password    string
	Logo        *MediaUpload
}

type LoginResult struct {
	User  *domain.User
	Token string
}

type SubscriptionResult struct {
	Subscriber *domain.User
	Target     *domain.User
}

type UploadVideoInput struct {
	Title       string
	Description string
	Category    string
	Tags        string
	Video       *MediaUpload
	Thumbnail   *MediaUpload
}

// UpdateVideoInput carries optional changes; nil fields are left untouched.
type UpdateVideoInput struct {
	Title       *string
	Description *string
	Category    *string
	Tags        *string
	Thumbnail   *MediaUpload
}

type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetProfile(ctx context.Context, id domain.UserID) (*domain.User, error)
	Subscribe(ctx context.Context, subscriber, target domain.UserID) (*SubscriptionResult, error)
	Unsubscribe(ctx context.Context, subscriber, target domain.UserID) (*SubscriptionResult, error)
}

type VideoService interface {
	Upload(ctx context.Context, owner domain.UserID, in UploadVideoInput) (*domain.Video, error)
	Get(ctx context.Context, id domain.VideoID) (*domain.Video, error)
	Update(ctx context.Context, caller domain.UserID, id domain.VideoID, in UpdateVideoInput) (*domain.Video, error)
	Delete(ctx context.Context, caller domain.UserID, id domain.VideoID) error
}

type EngagementService interface {
	Like(ctx context.Context, videoID domain.VideoID, userID domain.UserID) (*domain.Video, error)
	Dislike(ctx context.Context, videoID domain.VideoID, userID domain.UserID) (*domain.Video, error)
	RecordView(ctx context.Context, videoID domain.VideoID) (*domain.Video, error)
}

type CommentService interface {
	Create(ctx context.Context, author domain.UserID, videoID domain.VideoID, text string) (*domain.Comment, error)
	ListByVideo(ctx context.Context, videoID domain.VideoID) ([]domain.CommentView, error)
	Update(ctx context.Context, caller domain.UserID, id domain.CommentID, text string) (*domain.Comment, error)
	Delete(ctx context.Context, caller domain.UserID, id domain.CommentID) error
}
