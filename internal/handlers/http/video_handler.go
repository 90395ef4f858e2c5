package http

import (
	"context"
	"net/http"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/internal/infrastructure/middleware"
	apperrors "vidhub/pkg/errors"

	"github.com/gin-gonic/gin"
)

type VideoHandler struct {
	videos     ports.VideoService
	engagement ports.EngagementService
	maxUpload  int64
}

func NewVideoHandler(videos ports.VideoService, engagement ports.EngagementService, maxUpload int64) *VideoHandler {
	return &VideoHandler{
		videos:     videos,
		engagement: engagement,
		maxUpload:  maxUpload,
	}
}

func (h *VideoHandler) SetupRoutes(router gin.IRouter, requireAuth gin.HandlerFunc) {
	api := router.Group("/video")
	{
		api.POST("/upload", requireAuth, LimitBody(h.maxUpload), h.Upload)
		api.GET("/:videoId", h.Get)
		api.PUT("/:videoId", requireAuth, LimitBody(h.maxUpload), h.Update)
		api.DELETE("/:videoId", requireAuth, h.Delete)

		api.PUT("/like/:videoId", requireAuth, h.Like)
		api.PUT("/dislike/:videoId", requireAuth, h.Dislike)
		api.PUT("/views/:videoId", h.RecordView)
	}
}

func (h *VideoHandler) Upload(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	video, closeVideo, err := formFile(c, "video")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeVideo()

	thumbnail, closeThumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeThumbnail()

	created, err := h.videos.Upload(c.Request.Context(), caller, ports.UploadVideoInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Tags:        c.PostForm("tags"),
		Video:       video,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"newVideo": created})
}

func (h *VideoHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}

	video, err := h.videos.Get(c.Request.Context(), domain.VideoID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": video})
}

func (h *VideoHandler) Update(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}

	thumbnail, closeThumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeThumbnail()

	updated, err := h.videos.Update(c.Request.Context(), caller, domain.VideoID(id), ports.UpdateVideoInput{
		Title:       postForm(c, "title"),
		Description: postForm(c, "description"),
		Category:    postForm(c, "category"),
		Tags:        postForm(c, "tags"),
		Thumbnail:   thumbnail,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updatedVideo": updated})
}

func (h *VideoHandler) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}

	if err := h.videos.Delete(c.Request.Context(), caller, domain.VideoID(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "video deleted",
		"videoId": id,
	})
}

func (h *VideoHandler) Like(c *gin.Context) {
	h.react(c, h.engagement.Like, "video liked successfully")
}

func (h *VideoHandler) Dislike(c *gin.Context) {
	h.react(c, h.engagement.Dislike, "video disliked successfully")
}

func (h *VideoHandler) react(
	c *gin.Context,
	apply func(ctx context.Context, videoID domain.VideoID, userID domain.UserID) (*domain.Video, error),
	message string,
) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}

	video, err := apply(c.Request.Context(), domain.VideoID(id), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":   message,
		"video": video,
	})
}

func (h *VideoHandler) RecordView(c *gin.Context) {
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}

	video, err := h.engagement.RecordView(c.Request.Context(), domain.VideoID(id))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "view count incremented",
		"views":   video.Views,
	})
}

// requireCaller reads the authenticated caller or records a 401.
func requireCaller(c *gin.Context) (domain.UserID, bool) {
	caller, ok := middleware.CurrentUserID(c)
	if !ok {
		_ = c.Error(apperrors.NewUnauthenticatedError("authorization token is required"))
		c.Abort()
	}
	return caller, ok
}
