package http

import (
	"errors"
	"net/http"

	"vidhub/internal/core/domain"
	apperrors "vidhub/pkg/errors"
	"vidhub/pkg/validation"

	"github.com/gin-gonic/gin"
)

// toAppError maps domain failures onto the HTTP error taxonomy.
func toAppError(err error) *apperrors.AppError {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		return appErr
	}

	var validationErr *domain.ValidationError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &validationErr):
		appErr := apperrors.NewInvalidInputError(validationErr.Error())
		if validationErr.Field != "" {
			appErr = appErr.WithContext("field", validationErr.Field)
		}
		return appErr
	case errors.As(err, &maxBytesErr):
		return apperrors.NewAppError(apperrors.ErrCodeInvalidInput, "request body too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NewNotFoundError("user")
	case errors.Is(err, domain.ErrVideoNotFound):
		return apperrors.NewNotFoundError("video")
	case errors.Is(err, domain.ErrCommentNotFound):
		return apperrors.NewNotFoundError("comment")
	case errors.Is(err, domain.ErrForbidden):
		return apperrors.NewForbiddenError(err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return apperrors.NewUnauthenticatedError(err.Error())
	case errors.Is(err, domain.ErrInvalidPassword):
		return apperrors.NewInvalidCredentialError("invalid password")
	case errors.Is(err, domain.ErrInvalidCredential):
		return apperrors.NewInvalidCredentialError(err.Error())
	case domain.IsAlreadyApplied(err):
		return apperrors.NewConflictError(apperrors.ErrCodeAlreadyApplied, err.Error())
	case errors.Is(err, domain.ErrAlreadySubscribed):
		return apperrors.NewConflictError(apperrors.ErrCodeAlreadySubscribed, err.Error())
	case errors.Is(err, domain.ErrNotSubscribed):
		return apperrors.NewConflictError(apperrors.ErrCodeNotSubscribed, err.Error())
	case errors.Is(err, domain.ErrSelfSubscription):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		return apperrors.NewConflictError(apperrors.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return apperrors.WrapError(err, apperrors.ErrCodeConflict, "concurrent update, try again", http.StatusConflict)
	case errors.Is(err, domain.ErrUpstream):
		return apperrors.NewUpstreamError(err, "media or storage service failed")
	default:
		return apperrors.WrapError(err, apperrors.ErrCodeInternal, "internal server error", http.StatusInternalServerError)
	}
}

func respondError(c *gin.Context, err error) {
	_ = c.Error(toAppError(err))
}

// pathID returns the named route parameter, rejecting malformed identifiers
// with a 400 before any lookup happens.
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if err := validation.ValidateID(id, name); err != nil {
		respondError(c, domain.NewValidationError(name, err.Error()))
		return "", false
	}
	return id, true
}
