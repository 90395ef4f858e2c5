package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vidhub/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateRequiresVideoAndText(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	author := f.signup(t, "a@x.com")
	video := f.uploadVideo(t, author.ID)

	_, err := f.commentSvc.Create(ctx, author.ID, "missing", "hello")
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)

	_, err = f.commentSvc.Create(ctx, author.ID, video.ID, "   ")
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = f.commentSvc.Create(ctx, author.ID, video.ID, strings.Repeat("x", 5001))
	assert.True(t, errors.As(err, &verr))

	c, err := f.commentSvc.Create(ctx, author.ID, video.ID, " hello ")
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Text)
	assert.Equal(t, author.ID, c.AuthorID)
}

func TestCommentService_ListResolvesAuthors(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	author := f.signup(t, "a@x.com")
	video := f.uploadVideo(t, author.ID)

	empty, err := f.commentSvc.ListByVideo(ctx, video.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.commentSvc.Create(ctx, author.ID, video.ID, "first")
	require.NoError(t, err)
	_, err = f.commentSvc.Create(ctx, "ghost", video.ID, "second")
	require.NoError(t, err)

	list, err := f.commentSvc.ListByVideo(ctx, video.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byText := map[string]domain.CommentView{}
	for _, v := range list {
		byText[v.Text] = v
	}
	assert.Equal(t, author.ChannelName, byText["first"].Author.ChannelName)
	assert.Equal(t, author.Logo.URL, byText["first"].Author.LogoURL)
	assert.Equal(t, domain.UserID("ghost"), byText["second"].Author.ID)
	assert.Empty(t, byText["second"].Author.ChannelName)
}

func TestCommentService_AuthorOnlyEditAndDelete(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	author := f.signup(t, "a@x.com")
	other := f.signup(t, "b@x.com")
	video := f.uploadVideo(t, author.ID)

	c, err := f.commentSvc.Create(ctx, author.ID, video.ID, "original")
	require.NoError(t, err)

	_, err = f.commentSvc.Update(ctx, other.ID, c.ID, "defaced")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.commentSvc.Update(ctx, author.ID, c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	var validationErr *domain.ValidationError
	_, err = f.commentSvc.Update(ctx, author.ID, c.ID, "  ")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "commentText", validationErr.Field)
	stored, err := f.comments.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", stored.Text)

	assert.ErrorIs(t, f.commentSvc.Delete(ctx, other.ID, c.ID), domain.ErrForbidden)
	require.NoError(t, f.commentSvc.Delete(ctx, author.ID, c.ID))

	_, err = f.comments.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
	assert.ErrorIs(t, f.commentSvc.Delete(ctx, author.ID, c.ID), domain.ErrCommentNotFound)

	_, err = f.commentSvc.Update(ctx, author.ID, "missing", "text")
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
}
