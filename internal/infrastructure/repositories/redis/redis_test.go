package redis

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"vidhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUserRecordKeepsHiddenFields(t *testing.T) {
	data, err := encodeUser(&domain.User{ID: "u1", Email: "a@x.com", PasswordHash: "hash", Version: 7})
	require.NoError(t, err)

	user, err := decodeUser(data)
	require.NoError(t, err)
	assert.Equal(t, "hash", user.PasswordHash)
	assert.Equal(t, int64(7), user.Version)
}

func TestDecodeRejectsMalformedRecords(t *testing.T) {
	_, err := decodeVideo([]byte(`{"version":1}`))
	assert.Error(t, err)

	_, err = decodeComment([]byte(`not json`))
	assert.Error(t, err)
}

func TestVideoCommentsKey(t *testing.T) {
	assert.Equal(t, "vidhub:video:v1:comments", videoCommentsKey("v1"))
	assert.Equal(t, "vidhub:user:email:a@x.com", emailKey("a@x.com"))
}

// Integration tests run against a live server when VIDHUB_TEST_REDIS is set.
func testClient(t *testing.T) *RedisUserRepository {
	t.Helper()
	addr := os.Getenv("VIDHUB_TEST_REDIS")
	if addr == "" {
		t.Skip("VIDHUB_TEST_REDIS not set")
	}

	client, err := NewRedisClient(addr, "", 0, 10, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseRedisClient(client) })

	return NewRedisUserRepository(client, 20).(*RedisUserRepository)
}

func TestRedisIntegration_SubscribePair(t *testing.T) {
	users := testClient(t)
	ctx := context.Background()

	a := &domain.User{ID: domain.UserID(uuid.NewString()), Email: uuid.NewString() + "@x.com", PasswordHash: "h"}
	b := &domain.User{ID: domain.UserID(uuid.NewString()), Email: uuid.NewString() + "@x.com", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))
	assert.ErrorIs(t, users.Create(ctx, &domain.User{ID: "other", Email: a.Email}), domain.ErrEmailTaken)

	gotA, gotB, err := users.UpdatePair(ctx, a.ID, b.ID, func(x, y *domain.User) error {
		return domain.Subscribe(x, y)
	})
	require.NoError(t, err)
	assert.Contains(t, gotA.SubscribedChannels, b.ID)
	assert.Equal(t, 1, gotB.Subscribers)

	byEmail, err := users.GetByEmail(ctx, a.Email)
	require.NoError(t, err)
	assert.Equal(t, "h", byEmail.PasswordHash)
}

func TestRedisIntegration_ConcurrentLikes(t *testing.T) {
	users := testClient(t)
	videos := NewRedisVideoRepository(users.client, 50)
	ctx := context.Background()

	id := domain.VideoID(uuid.NewString())
	require.NoError(t, videos.Create(ctx, &domain.Video{ID: id, CreatedAt: time.Now()}))

	const likers = 10
	var wg sync.WaitGroup
	for i := 0; i < likers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := videos.Update(ctx, id, func(v *domain.Video) error {
				return v.ApplyReaction(domain.UserID(fmt.Sprintf("u%d", i)), domain.ReactionLike)
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	v, err := videos.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, likers, v.Likes)
	assert.Len(t, v.LikedBy, likers)
}

func TestRedisIntegration_CommentsOrdered(t *testing.T) {
	users := testClient(t)
	comments := NewRedisCommentRepository(users.client, 5)
	ctx := context.Background()

	videoID := domain.VideoID(uuid.NewString())
	base := time.Now()
	first := &domain.Comment{ID: domain.CommentID(uuid.NewString()), VideoID: videoID, CreatedAt: base}
	second := &domain.Comment{ID: domain.CommentID(uuid.NewString()), VideoID: videoID, CreatedAt: base.Add(time.Second)}
	require.NoError(t, comments.Create(ctx, second))
	require.NoError(t, comments.Create(ctx, first))

	list, err := comments.ListByVideo(ctx, videoID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)

	removed, err := comments.DeleteByVideo(ctx, videoID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}
