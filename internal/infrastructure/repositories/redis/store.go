package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vidhub/internal/core/domain"
	"vidhub/pkg/retry"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix        = "vidhub:"
	userKeyPrefix    = keyPrefix + "user:"
	emailKeyPrefix   = userKeyPrefix + "email:"
	videoKeyPrefix   = keyPrefix + "video:"
	commentKeyPrefix = keyPrefix + "comment:"
)

func userKey(id domain.UserID) string           { return userKeyPrefix + string(id) }
func emailKey(email string) string              { return emailKeyPrefix + email }
func videoKey(id domain.VideoID) string         { return videoKeyPrefix + string(id) }
func videoCommentsKey(id domain.VideoID) string { return videoKeyPrefix + string(id) + ":comments" }
func commentKey(id domain.CommentID) string     { return commentKeyPrefix + string(id) }

// Stored documents carry the fields the public JSON form hides.
type userRecord struct {
	Version  int64        `json:"version"`
	Password string       `json:"password"`
	User     *domain.User `json:"user"`
}

type videoRecord struct {
	Version int64         `json:"version"`
	Video   *domain.Video `json:"video"`
}

type commentRecord struct {
	Version int64           `json:"version"`
	Comment *domain.Comment `json:"comment"`
}

func encodeUser(u *domain.User) ([]byte, error) {
	return json.Marshal(userRecord{Version: u.Version, Password: u.PasswordHash, User: u})
}

func decodeUser(data []byte) (*domain.User, error) {
	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	if rec.User == nil {
		return nil, fmt.Errorf("malformed user record")
	}
	rec.User.PasswordHash = rec.Password
	rec.User.Version = rec.Version
	return rec.User, nil
}

func encodeVideo(v *domain.Video) ([]byte, error) {
	return json.Marshal(videoRecord{Version: v.Version, Video: v})
}

func decodeVideo(data []byte) (*domain.Video, error) {
	var rec videoRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video: %w", err)
	}
	if rec.Video == nil {
		return nil, fmt.Errorf("malformed video record")
	}
	rec.Video.Version = rec.Version
	return rec.Video, nil
}

func encodeComment(c *domain.Comment) ([]byte, error) {
	return json.Marshal(commentRecord{Version: c.Version, Comment: c})
}

func decodeComment(data []byte) (*domain.Comment, error) {
	var rec commentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comment: %w", err)
	}
	if rec.Comment == nil {
		return nil, fmt.Errorf("malformed comment record")
	}
	rec.Comment.Version = rec.Version
	return rec.Comment, nil
}

// optimistic runs fn under WATCH on keys, repeating it when another client
// modified a watched key before EXEC.
type optimistic struct {
	client *redis.Client
	retry  retry.Config
}

func newOptimistic(client *redis.Client, attempts int) optimistic {
	if attempts < 1 {
		attempts = 1
	}
	return optimistic{
		client: client,
		retry: retry.Config{
			MaxAttempts:  attempts,
			InitialDelay: 5 * time.Millisecond,
			MaxDelay:     100 * time.Millisecond,
			Multiplier:   2.0,
			Jitter:       true,
			Retryable: func(err error) bool {
				return errors.Is(err, redis.TxFailedErr)
			},
		},
	}
}

func (o optimistic) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	err := retry.Do(ctx, o.retry, func() error {
		return o.client.Watch(ctx, fn, keys...)
	})
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("%w: %v", domain.ErrConcurrentUpdate, err)
	}
	return err
}
