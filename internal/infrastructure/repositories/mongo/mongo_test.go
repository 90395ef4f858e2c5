package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"vidhub/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestWithConflictRetry_ExhaustedBecomesConcurrentUpdate(t *testing.T) {
	calls := 0
	_, err := withConflictRetry(context.Background(), conflictRetry(3), func() (int, error) {
		calls++
		return 0, errVersionMismatch
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.Equal(t, 3, calls)
}

func TestWithConflictRetry_DomainErrorsPassThrough(t *testing.T) {
	calls := 0
	_, err := withConflictRetry(context.Background(), conflictRetry(3), func() (int, error) {
		calls++
		return 0, domain.ErrAlreadyLiked
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyLiked)
	assert.Equal(t, 1, calls)
}

func TestWithConflictRetry_RecoversAfterMismatch(t *testing.T) {
	calls := 0
	got, err := withConflictRetry(context.Background(), conflictRetry(3), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errVersionMismatch
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.False(t, errors.Is(err, domain.ErrConcurrentUpdate))
}

// Integration tests need a replica set (transactions) at VIDHUB_TEST_MONGO.
func testDatabase(t *testing.T) (*mongo.Client, *mongo.Database) {
	t.Helper()
	uri := os.Getenv("VIDHUB_TEST_MONGO")
	if uri == "" {
		t.Skip("VIDHUB_TEST_MONGO not set")
	}

	client, db, err := NewMongoClient(uri, "vidhub_test_"+uuid.NewString()[:8], 10*time.Second, zap.NewNop().Sugar())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = CloseMongoClient(client)
	})
	return client, db
}

func TestMongoIntegration_Users(t *testing.T) {
	client, db := testDatabase(t)
	users := NewMongoUserRepository(client, db, 5)
	ctx := context.Background()

	a := &domain.User{ID: "a", Email: "a@x.com", PasswordHash: "hash"}
	b := &domain.User{ID: "b", Email: "b@x.com"}
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))
	assert.ErrorIs(t, users.Create(ctx, &domain.User{ID: "c", Email: "a@x.com"}), domain.ErrEmailTaken)

	_, gotB, err := users.UpdatePair(ctx, "a", "b", func(x, y *domain.User) error {
		return domain.Subscribe(x, y)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, gotB.Subscribers)

	_, _, err = users.UpdatePair(ctx, "a", "b", func(x, y *domain.User) error {
		return domain.Subscribe(x, y)
	})
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)

	stored, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", stored.PasswordHash)
	assert.Equal(t, []domain.UserID{"b"}, stored.SubscribedChannels)
}

func TestMongoIntegration_VideosAndComments(t *testing.T) {
	_, db := testDatabase(t)
	videos := NewMongoVideoRepository(db, 5)
	comments := NewMongoCommentRepository(db, 5)
	ctx := context.Background()

	require.NoError(t, videos.Create(ctx, &domain.Video{ID: "v1", Tags: []string{}}))

	v, err := videos.IncrementViews(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.Views)

	v, err = videos.Update(ctx, "v1", func(v *domain.Video) error {
		return v.ApplyReaction("u1", domain.ReactionDislike)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Dislikes)

	now := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, comments.Create(ctx, &domain.Comment{ID: "c2", VideoID: "v1", CreatedAt: now.Add(time.Second)}))
	require.NoError(t, comments.Create(ctx, &domain.Comment{ID: "c1", VideoID: "v1", CreatedAt: now}))

	list, err := comments.ListByVideo(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.CommentID("c1"), list[0].ID)

	removed, err := comments.DeleteByVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	require.NoError(t, videos.Delete(ctx, "v1"))
	_, err = videos.GetByID(ctx, "v1")
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)
}
