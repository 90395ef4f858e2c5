package http

import (
	"context"
	"errors"
	"net/http"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	apperrors "vidhub/pkg/errors"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users     ports.UserService
	maxUpload int64
}

func NewUserHandler(users ports.UserService, maxUpload int64) *UserHandler {
	return &UserHandler{users: users, maxUpload: maxUpload}
}

func (h *UserHandler) SetupRoutes(router gin.IRouter, requireAuth gin.HandlerFunc) {
	api := router.Group("/user")
	{
		api.POST("/signup", LimitBody(h.maxUpload), h.Signup)
		api.POST("/login", h.Login)
		api.PUT("/subscribe/:targetId", requireAuth, h.Subscribe)
		api.PUT("/unsubscribe/:targetId", requireAuth, h.Unsubscribe)
		api.GET("/:userId", h.GetProfile)
	}
}

func (h *UserHandler) Signup(c *gin.Context) {
	logo, closeLogo, err := formFile(c, "logo")
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeLogo()

	user, err := h.users.Signup(c.Request.Context(), ports.SignupInput{
		ChannelName: c.PostForm("channelName"),
		Email:       c.PostForm("email"),
		Phone:       c.PostForm("phone"),
		Password:    c.PostForm("password"),
		Logo:        logo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"newUser": user})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.NewInvalidInputError("invalid request format"))
		return
	}

	result, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrUserNotFound) {
		_ = c.Error(apperrors.NewAppError(apperrors.ErrCodeNotFound, "email is not registered", http.StatusNotFound))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	u := result.User
	c.JSON(http.StatusOK, gin.H{
		"_id":                u.ID,
		"channelName":        u.ChannelName,
		"email":              u.Email,
		"phone":              u.Phone,
		"logo":               u.Logo,
		"logoUrl":            u.Logo.URL,
		"subscribers":        u.Subscribers,
		"subscribedChannels": u.SubscribedChannels,
		"token":              result.Token,
	})
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	h.changeSubscription(c, h.users.Subscribe, "subscribed successfully")
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	h.changeSubscription(c, h.users.Unsubscribe, "unsubscribed successfully")
}

func (h *UserHandler) changeSubscription(
	c *gin.Context,
	change func(ctx context.Context, subscriber, target domain.UserID) (*ports.SubscriptionResult, error),
	message string,
) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	target, ok := pathID(c, "targetId")
	if !ok {
		return
	}

	result, err := change(c.Request.Context(), caller, domain.UserID(target))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"userA":   result.Subscriber,
		"userB":   result.Target,
	})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	id, ok := pathID(c, "userId")
	if !ok {
		return
	}

	user, err := h.users.GetProfile(c.Request.Context(), domain.UserID(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"_id":         user.ID,
			"channelName": user.ChannelName,
			"logo":        user.Logo,
			"subscribers": user.Subscribers,
			"createdAt":   user.CreatedAt,
		},
	})
}
