package ports

import (
	"context"
	"io"

	"vidhub/internal/core/domain"
)

// MediaUpload is a binary payload handed to the media collaborator.
type MediaUpload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// MediaStore is the external binary storage service.
type MediaStore interface {
	Upload(ctx context.Context, kind domain.MediaKind, upload MediaUpload) (domain.MediaRef, error)
	Release(ctx context.Context, kind domain.MediaKind, handle string) error
}
