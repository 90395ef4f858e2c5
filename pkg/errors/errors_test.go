package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrCodeInvalidInput, "title is required", http.StatusBadRequest)
	assert.Equal(t, "VALIDATION_FAILURE: title is required", err.Error())
}

func TestAppError_WithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamError(cause, "media store unavailable")

	assert.Same(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.ErrorIs(t, err, cause)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewInvalidInputError("bad field").
		WithContext("field", "email").
		WithContext("max", 254)

	assert.Equal(t, "email", err.Context["field"])
	assert.Equal(t, 254, err.Context["max"])
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
		client bool
	}{
		{"invalid input", NewInvalidInputError("x"), ErrCodeInvalidInput, 400, true},
		{"not found", NewNotFoundError("video"), ErrCodeNotFound, 404, true},
		{"unauthenticated", NewUnauthenticatedError("x"), ErrCodeUnauthenticated, 401, true},
		{"invalid credential", NewInvalidCredentialError("x"), ErrCodeInvalidCredential, 401, true},
		{"forbidden", NewForbiddenError("x"), ErrCodeForbidden, 403, true},
		{"conflict", NewConflictError(ErrCodeAlreadyApplied, "x"), ErrCodeAlreadyApplied, 409, true},
		{"rate limit", NewRateLimitError(), ErrCodeRateLimit, 429, true},
		{"internal", NewInternalError("x"), ErrCodeInternal, 500, false},
		{"upstream", NewUpstreamError(nil, "x"), ErrCodeUpstream, 502, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.client, tt.err.ClientError())
		})
	}
}

func TestNewNotFoundError_Message(t *testing.T) {
	assert.Equal(t, "video not found", NewNotFoundError("video").Message)
}

func TestGetAppError(t *testing.T) {
	appErr := NewForbiddenError("not yours")

	assert.Same(t, appErr, GetAppError(appErr))
	assert.Same(t, appErr, GetAppError(fmt.Errorf("handler: %w", appErr)))
	assert.Nil(t, GetAppError(errors.New("plain")))
	assert.Nil(t, GetAppError(nil))

	assert.True(t, IsAppError(appErr))
	assert.False(t, IsAppError(errors.New("plain")))
}
