package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
)

// LocalStore keeps assets on the local filesystem. The HTTP server exposes
// the directory under BaseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	for _, kind := range []domain.MediaKind{domain.MediaImage, domain.MediaVideo} {
		if err := os.MkdirAll(filepath.Join(dir, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create media directory: %w", err)
		}
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalStore) Upload(ctx context.Context, kind domain.MediaKind, upload ports.MediaUpload) (domain.MediaRef, error) {
	if upload.Body == nil {
		return domain.MediaRef{}, fmt.Errorf("empty %s upload", kind)
	}

	handle := objectName(kind, upload)
	target, err := s.path(handle)
	if err != nil {
		return domain.MediaRef{}, err
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return domain.MediaRef{}, fmt.Errorf("failed to create media file: %w", err)
	}

	if _, err := io.Copy(f, upload.Body); err != nil {
		f.Close()
		os.Remove(target)
		return domain.MediaRef{}, fmt.Errorf("failed to write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return domain.MediaRef{}, fmt.Errorf("failed to close media file: %w", err)
	}

	return domain.MediaRef{URL: joinURL(s.baseURL, handle), Handle: handle}, nil
}

// Release removes the asset. Releasing a missing asset is not an error.
func (s *LocalStore) Release(ctx context.Context, kind domain.MediaKind, handle string) error {
	target, err := s.path(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

func (s *LocalStore) HealthCheck(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}

func (s *LocalStore) path(handle string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(handle))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid media handle: %q", handle)
	}
	return filepath.Join(s.dir, clean), nil
}
