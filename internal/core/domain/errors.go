package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrVideoNotFound   = errors.New("video not found")
	ErrCommentNotFound = errors.New("comment not found")

	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidPassword = errors.New("invalid password")

	ErrAlreadyLiked      = errors.New("video already liked")
	ErrAlreadyDisliked   = errors.New("video already disliked")
	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("not subscribed")
	ErrSelfSubscription  = errors.New("cannot subscribe to own channel")

	ErrForbidden         = errors.New("forbidden")
	ErrUnauthenticated   = errors.New("authorization token is required")
	ErrInvalidCredential = errors.New("invalid token")

	ErrConcurrentUpdate = errors.New("concurrent update, try again")
	ErrUpstream         = errors.New("upstream service failure")
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsAlreadyApplied reports whether err rejects a repeated identical reaction.
func IsAlreadyApplied(err error) bool {
	return errors.Is(err, ErrAlreadyLiked) || errors.Is(err, ErrAlreadyDisliked)
}
