package redis

import (
	"context"
	"fmt"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/tracing"

	"github.com/redis/go-redis/v9"
)

type RedisUserRepository struct {
	client *redis.Client
	opt    optimistic
}

func NewRedisUserRepository(client *redis.Client, updateAttempts int) ports.UserRepository {
	return &RedisUserRepository{
		client: client,
		opt:    newOptimistic(client, updateAttempts),
	}
}

// Create claims the email key and writes the user in one transaction.
func (r *RedisUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "redis", "insert", "users")
	defer span.End()

	eKey, uKey := emailKey(user.Email), userKey(user.ID)
	user.Version = 1
	data, err := encodeUser(user)
	if err != nil {
		return err
	}

	err = r.opt.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, eKey, uKey).Result()
		if err != nil {
			return fmt.Errorf("failed to check user keys: %w", err)
		}
		if n > 0 {
			return domain.ErrEmailTaken
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, uKey, data, 0)
			pipe.Set(ctx, eKey, string(user.ID), 0)
			return nil
		})
		return err
	}, eKey, uKey)
	tracing.RecordError(ctx, err)
	return err
}

func (r *RedisUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	data, err := r.client.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Redis: %w", err)
	}
	return decodeUser(data)
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, err := r.client.Get(ctx, emailKey(email)).Result()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve email: %w", err)
	}
	return r.GetByID(ctx, domain.UserID(id))
}

func (r *RedisUserRepository) GetByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]*domain.User, error) {
	found := make(map[domain.UserID]*domain.User, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = userKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get users from Redis: %w", err)
	}

	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		user, err := decodeUser([]byte(s))
		if err != nil {
			return nil, err
		}
		found[user.ID] = user
	}
	return found, nil
}

// UpdatePair watches both user keys so a concurrent write to either one
// aborts and repeats the whole mutation.
func (r *RedisUserRepository) UpdatePair(ctx context.Context, a, b domain.UserID, fn ports.UserMutation) (*domain.User, *domain.User, error) {
	ctx, span := tracing.TraceDatabaseOperation(ctx, "redis", "update_pair", "users")
	defer span.End()

	keyA, keyB := userKey(a), userKey(b)
	var userA, userB *domain.User

	err := r.opt.watch(ctx, func(tx *redis.Tx) error {
		var err error
		if userA, err = loadUser(ctx, tx, keyA); err != nil {
			return err
		}
		userB = userA
		if a != b {
			if userB, err = loadUser(ctx, tx, keyB); err != nil {
				return err
			}
		}

		if err := fn(userA, userB); err != nil {
			return err
		}

		userA.Version++
		dataA, err := encodeUser(userA)
		if err != nil {
			return err
		}
		var dataB []byte
		if a != b {
			userB.Version++
			if dataB, err = encodeUser(userB); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyA, dataA, 0)
			if dataB != nil {
				pipe.Set(ctx, keyB, dataB, 0)
			}
			return nil
		})
		return err
	}, keyA, keyB)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, nil, err
	}
	return userA, userB, nil
}

func loadUser(ctx context.Context, tx *redis.Tx, key string) (*domain.User, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Redis: %w", err)
	}
	return decodeUser(data)
}
