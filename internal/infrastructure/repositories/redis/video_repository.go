package redis

import (
	"context"
	"fmt"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/tracing"

	"github.com/redis/go-redis/v9"
)

type RedisVideoRepository struct {
	client *redis.Client
	opt    optimistic
}

func NewRedisVideoRepository(client *redis.Client, updateAttempts int) ports.VideoRepository {
	return &RedisVideoRepository{
		client: client,
		opt:    newOptimistic(client, updateAttempts),
	}
}

func (r *RedisVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	video.Version = 1
	data, err := encodeVideo(video)
	if err != nil {
		return err
	}

	ok, err := r.client.SetNX(ctx, videoKey(video.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set video in Redis: %w", err)
	}
	if !ok {
		return fmt.Errorf("video already exists: %s", video.ID)
	}
	return nil
}

func (r *RedisVideoRepository) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	data, err := r.client.Get(ctx, videoKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video from Redis: %w", err)
	}
	return decodeVideo(data)
}

func (r *RedisVideoRepository) Update(ctx context.Context, id domain.VideoID, fn ports.VideoMutation) (*domain.Video, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "redis", "update", "videos")
	defer span.End()

	key := videoKey(id)
	var updated *domain.Video

	err := r.opt.watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return domain.ErrVideoNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get video from Redis: %w", err)
		}

		video, err := decodeVideo(data)
		if err != nil {
			return err
		}
		if err := fn(video); err != nil {
			return err
		}

		video.Version++
		next, err := encodeVideo(video)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		updated = video
		return err
	}, key)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	return updated, nil
}

func (r *RedisVideoRepository) IncrementViews(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	return r.Update(ctx, id, func(v *domain.Video) error {
		v.RecordView()
		return nil
	})
}

func (r *RedisVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	n, err := r.client.Del(ctx, videoKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete video from Redis: %w", err)
	}
	if n == 0 {
		return domain.ErrVideoNotFound
	}
	return nil
}
