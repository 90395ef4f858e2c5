package middleware

import (
	"errors"
	"net/http"
	"strings"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/internal/core/services"
	apperrors "vidhub/pkg/errors"
	"vidhub/pkg/logger"
	"vidhub/pkg/tracing"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "user"
)

// AuthMiddleware verifies the bearer token and loads the caller's current
// record, so handlers always see a fresh profile.
func AuthMiddleware(authService services.AuthService, users ports.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, apperrors.NewUnauthenticatedError("authorization token is required"))
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWith(c, apperrors.NewUnauthenticatedError("invalid authorization header format"))
			return
		}

		userID, err := authService.ValidateToken(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, services.ErrExpiredToken) {
				msg = "token expired"
			}
			abortWith(c, apperrors.NewInvalidCredentialError(msg))
			return
		}

		user, err := users.GetProfile(c.Request.Context(), userID)
		if errors.Is(err, domain.ErrUserNotFound) {
			abortWith(c, apperrors.NewInvalidCredentialError("account no longer exists"))
			return
		}
		if err != nil {
			abortWith(c, apperrors.WrapError(err, apperrors.ErrCodeInternal, "failed to load caller", http.StatusInternalServerError))
			return
		}

		ctx := logger.WithUserID(c.Request.Context(), string(user.ID))
		tracing.AddSpanAttributes(ctx, tracing.UserIDKey.String(string(user.ID)))
		c.Request = c.Request.WithContext(ctx)

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUserID returns the id stored by AuthMiddleware.
func CurrentUserID(c *gin.Context) (domain.UserID, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(domain.UserID)
	return id, ok
}

// CurrentUser returns the caller record loaded by AuthMiddleware.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

func abortWith(c *gin.Context, err *apperrors.AppError) {
	_ = c.Error(err)
	c.Abort()
}
