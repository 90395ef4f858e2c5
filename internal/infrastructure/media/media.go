package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"

	"github.com/google/uuid"
)

// HealthChecker is implemented by stores that can report reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// objectName builds a collision-free handle such as "video/<uuid>.mp4".
func objectName(kind domain.MediaKind, upload ports.MediaUpload) string {
	ext := strings.ToLower(path.Ext(upload.Name))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), ext)
}

func contentType(upload ports.MediaUpload) string {
	if upload.ContentType != "" {
		return upload.ContentType
	}
	return "application/octet-stream"
}

func joinURL(base, handle string) string {
	return strings.TrimSuffix(base, "/") + "/" + handle
}
