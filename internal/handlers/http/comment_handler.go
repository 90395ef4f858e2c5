package http

import (
	"net/http"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	apperrors "vidhub/pkg/errors"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments ports.CommentService
}

func NewCommentHandler(comments ports.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) SetupRoutes(router gin.IRouter, requireAuth gin.HandlerFunc) {
	api := router.Group("/comment")
	{
		api.POST("/new-comment/:videoId", requireAuth, h.Create)
		api.GET("/:videoId", h.ListByVideo)
		api.PUT("/:commentId", requireAuth, h.Update)
		api.DELETE("/:commentId", requireAuth, h.Delete)
	}
}

type CommentRequest struct {
	CommentText string `json:"commentText"`
}

func bindComment(c *gin.Context) (string, bool) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return "", false
	}
	return req.CommentText, true
}

func (h *CommentHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	text, ok := bindComment(c)
	if !ok {
		return
	}

	videoID, ok := pathID(c, "videoId")
	if !ok {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), caller, domain.VideoID(videoID), text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"msg":     "comment added successfully",
		"comment": comment,
	})
}

func (h *CommentHandler) ListByVideo(c *gin.Context) {
	videoID, ok := pathID(c, "videoId")
	if !ok {
		return
	}

	list, err := h.comments.ListByVideo(c.Request.Context(), domain.VideoID(videoID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"commentList": list})
}

func (h *CommentHandler) Update(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	text, ok := bindComment(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), caller, domain.CommentID(id), text)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "comment updated successfully",
		"comment": comment,
	})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "commentId")
	if !ok {
		return
	}

	if err := h.comments.Delete(c.Request.Context(), caller, domain.CommentID(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}
