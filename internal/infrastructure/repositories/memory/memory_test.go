package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"vidhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_EmailUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Email: "a@x.com"}))
	err := repo.Create(ctx, &domain.User{ID: "u2", Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("u1"), got.ID)

	_, err = repo.GetByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_UpdatePairAtomic(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "a", Email: "a@x.com"}))
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "b", Email: "b@x.com"}))

	a, b, err := repo.UpdatePair(ctx, "a", "b", func(a, b *domain.User) error {
		return domain.Subscribe(a, b)
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.UserID{"b"}, a.SubscribedChannels)
	assert.Equal(t, 1, b.Subscribers)

	_, _, err = repo.UpdatePair(ctx, "a", "b", func(a, b *domain.User) error {
		a.ChannelName = "changed"
		return domain.Subscribe(a, b)
	})
	assert.ErrorIs(t, err, domain.ErrAlreadySubscribed)

	stored, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, stored.ChannelName, "failed mutation must not persist")

	_, _, err = repo.UpdatePair(ctx, "a", "missing", func(a, b *domain.User) error { return nil })
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "a", Email: "a@x.com"}))

	got, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	got.SubscriberBy = append(got.SubscriberBy, "intruder")

	again, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, again.SubscriberBy)
}

func TestUserRepository_GetByIDsSkipsMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Create(ctx, &domain.User{ID: "a", Email: "a@x.com"}))

	found, err := repo.GetByIDs(ctx, []domain.UserID{"a", "ghost"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Contains(t, found, domain.UserID("a"))
}

func TestVideoRepository_ConcurrentReactions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVideoRepository()
	require.NoError(t, repo.Create(ctx, &domain.Video{ID: "v1"}))

	const users = 50
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			uid := domain.UserID(fmt.Sprintf("u%d", i))
			_, err := repo.Update(ctx, "v1", func(v *domain.Video) error {
				return v.ApplyReaction(uid, domain.ReactionLike)
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	v, err := repo.GetByID(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, users, v.Likes)
	assert.Len(t, v.LikedBy, users)
}

func TestVideoRepository_IncrementViews(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVideoRepository()
	require.NoError(t, repo.Create(ctx, &domain.Video{ID: "v1"}))

	for i := 0; i < 3; i++ {
		_, err := repo.IncrementViews(ctx, "v1")
		require.NoError(t, err)
	}

	v, err := repo.GetByID(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Views)

	_, err = repo.IncrementViews(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)
}

func TestVideoRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryVideoRepository()
	require.NoError(t, repo.Create(ctx, &domain.Video{ID: "v1"}))

	require.NoError(t, repo.Delete(ctx, "v1"))
	assert.ErrorIs(t, repo.Delete(ctx, "v1"), domain.ErrVideoNotFound)
}

func TestCommentRepository_ListOrderedAndDeleteByVideo(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCommentRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &domain.Comment{ID: "c2", VideoID: "v1", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &domain.Comment{ID: "c1", VideoID: "v1", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &domain.Comment{ID: "c3", VideoID: "v2", CreatedAt: base}))

	list, err := repo.ListByVideo(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.CommentID("c1"), list[0].ID)
	assert.Equal(t, domain.CommentID("c2"), list[1].ID)

	removed, err := repo.DeleteByVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	list, err = repo.ListByVideo(ctx, "v1")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = repo.GetByID(ctx, "c3")
	assert.NoError(t, err)
}

func TestCommentRepository_UpdateMissing(t *testing.T) {
	repo := NewMemoryCommentRepository()
	_, err := repo.Update(context.Background(), "nope", func(c *domain.Comment) error { return nil })
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
}
