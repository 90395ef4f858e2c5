package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// LimitBody caps the request body at max bytes.
func LimitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

// formFile opens an optional multipart file. A missing field or a
// non-multipart body yields a nil upload. The returned closer is never nil.
func formFile(c *gin.Context, field string) (*ports.MediaUpload, func(), error) {
	noop := func() {}

	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, noop, err
	}
	if err != nil {
		return nil, noop, domain.NewValidationError(field, "malformed multipart upload")
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, err
	}
	return newUpload(header, file), func() { _ = file.Close() }, nil
}

func newUpload(header *multipart.FileHeader, file multipart.File) *ports.MediaUpload {
	return &ports.MediaUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

// postForm returns a pointer to the field value, or nil when the field was not sent.
func postForm(c *gin.Context, field string) *string {
	v, ok := c.GetPostForm(field)
	if !ok {
		return nil
	}
	return &v
}
