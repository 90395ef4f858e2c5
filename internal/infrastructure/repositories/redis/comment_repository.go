package redis

import (
	"context"
	"fmt"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

// RedisCommentRepository keeps each comment under its own key plus a
// per-video sorted set scored by creation time.
type RedisCommentRepository struct {
	client *redis.Client
	opt    optimistic
}

func NewRedisCommentRepository(client *redis.Client, updateAttempts int) ports.CommentRepository {
	return &RedisCommentRepository{
		client: client,
		opt:    newOptimistic(client, updateAttempts),
	}
}

func (r *RedisCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	comment.Version = 1
	data, err := encodeComment(comment)
	if err != nil {
		return err
	}

	key := commentKey(comment.ID)
	return r.opt.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to check comment key: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("comment already exists: %s", comment.ID)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, videoCommentsKey(comment.VideoID), redis.Z{
				Score:  float64(comment.CreatedAt.UnixNano()),
				Member: string(comment.ID),
			})
			return nil
		})
		return err
	}, key)
}

func (r *RedisCommentRepository) GetByID(ctx context.Context, id domain.CommentID) (*domain.Comment, error) {
	data, err := r.client.Get(ctx, commentKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment from Redis: %w", err)
	}
	return decodeComment(data)
}

func (r *RedisCommentRepository) ListByVideo(ctx context.Context, videoID domain.VideoID) ([]*domain.Comment, error) {
	ids, err := r.client.ZRange(ctx, videoCommentsKey(videoID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments := make([]*domain.Comment, 0, len(ids))
	if len(ids) == 0 {
		return comments, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = commentKey(domain.CommentID(id))
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get comments from Redis: %w", err)
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		comment, err := decodeComment([]byte(s))
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func (r *RedisCommentRepository) Update(ctx context.Context, id domain.CommentID, fn ports.CommentMutation) (*domain.Comment, error) {
	key := commentKey(id)
	var updated *domain.Comment

	err := r.opt.watch(ctx, func(tx *redis.Tx) error {
		comment, err := loadComment(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := fn(comment); err != nil {
			return err
		}

		comment.Version++
		data, err := encodeComment(comment)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		updated = comment
		return err
	}, key)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RedisCommentRepository) Delete(ctx context.Context, id domain.CommentID) error {
	key := commentKey(id)
	return r.opt.watch(ctx, func(tx *redis.Tx) error {
		comment, err := loadComment(ctx, tx, key)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.ZRem(ctx, videoCommentsKey(comment.VideoID), string(id))
			return nil
		})
		return err
	}, key)
}

func (r *RedisCommentRepository) DeleteByVideo(ctx context.Context, videoID domain.VideoID) (int64, error) {
	indexKey := videoCommentsKey(videoID)
	var removed int64

	err := r.opt.watch(ctx, func(tx *redis.Tx) error {
		ids, err := tx.ZRange(ctx, indexKey, 0, -1).Result()
		if err != nil {
			return fmt.Errorf("failed to list comments: %w", err)
		}

		keys := make([]string, 0, len(ids)+1)
		for _, id := range ids {
			keys = append(keys, commentKey(domain.CommentID(id)))
		}
		keys = append(keys, indexKey)

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, keys...)
			return nil
		})
		if err != nil {
			return err
		}
		removed = int64(len(ids))
		return nil
	}, indexKey)
	return removed, err
}

func loadComment(ctx context.Context, tx *redis.Tx, key string) (*domain.Comment, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment from Redis: %w", err)
	}
	return decodeComment(data)
}
