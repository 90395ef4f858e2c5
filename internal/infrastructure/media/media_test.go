package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/pkg/circuitbreaker"
	"vidhub/pkg/config"
	"vidhub/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLocalStore_UploadAndRelease(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://localhost:8080/media/")
	require.NoError(t, err)

	ref, err := store.Upload(context.Background(), domain.MediaVideo, ports.MediaUpload{
		Name: "clip.MP4",
		Body: strings.NewReader("frames"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref.Handle, "video/"))
	assert.True(t, strings.HasSuffix(ref.Handle, ".mp4"))
	assert.Equal(t, "http://localhost:8080/media/"+ref.Handle, ref.URL)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref.Handle)))
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))

	require.NoError(t, store.Release(context.Background(), domain.MediaVideo, ref.Handle))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(ref.Handle)))
	assert.True(t, os.IsNotExist(err))

	// already gone
	assert.NoError(t, store.Release(context.Background(), domain.MediaVideo, ref.Handle))
}

func TestLocalStore_RejectsEscapingHandles(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://x")
	require.NoError(t, err)

	for _, handle := range []string{"../etc/passwd", "..", "/abs/path", ""} {
		assert.Error(t, store.Release(context.Background(), domain.MediaImage, handle), handle)
	}
}

func TestLocalStore_HealthCheck(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://x")
	require.NoError(t, err)
	assert.NoError(t, store.HealthCheck(context.Background()))
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Upload(ctx context.Context, kind domain.MediaKind, upload ports.MediaUpload) (domain.MediaRef, error) {
	args := m.Called(ctx, kind, upload)
	return args.Get(0).(domain.MediaRef), args.Error(1)
}

func (m *mockStore) Release(ctx context.Context, kind domain.MediaKind, handle string) error {
	return m.Called(ctx, kind, handle).Error(0)
}

func testResilient(next ports.MediaStore, threshold int) *ResilientStore {
	return NewResilientStore(next, "mock",
		circuitbreaker.Config{FailureThreshold: threshold, SuccessThreshold: 1, Timeout: time.Minute},
		retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
		zap.NewNop().Sugar(),
	)
}

func TestResilientStore_RetriesSeekableUpload(t *testing.T) {
	next := &mockStore{}
	ref := domain.MediaRef{URL: "http://cdn/x", Handle: "x"}
	next.On("Upload", mock.Anything, domain.MediaImage, mock.Anything).
		Return(domain.MediaRef{}, errors.New("timeout")).Once()
	next.On("Upload", mock.Anything, domain.MediaImage, mock.Anything).
		Return(ref, nil).Once()

	store := testResilient(next, 5)
	got, err := store.Upload(context.Background(), domain.MediaImage, ports.MediaUpload{Body: bytes.NewReader([]byte("png"))})
	require.NoError(t, err)
	assert.Equal(t, ref, got)
	next.AssertNumberOfCalls(t, "Upload", 2)
}

func TestResilientStore_StreamUploadNotRetried(t *testing.T) {
	next := &mockStore{}
	next.On("Upload", mock.Anything, domain.MediaVideo, mock.Anything).
		Return(domain.MediaRef{}, errors.New("reset"))

	store := testResilient(next, 5)
	body := io.MultiReader(strings.NewReader("stream"))
	_, err := store.Upload(context.Background(), domain.MediaVideo, ports.MediaUpload{Body: body})
	assert.ErrorIs(t, err, domain.ErrUpstream)
	next.AssertNumberOfCalls(t, "Upload", 1)
}

func TestResilientStore_OpensCircuit(t *testing.T) {
	next := &mockStore{}
	next.On("Release", mock.Anything, domain.MediaImage, "h").Return(errors.New("down"))

	store := testResilient(next, 2)
	err := store.Release(context.Background(), domain.MediaImage, "h")
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, circuitbreaker.StateOpen, store.BreakerState())

	err = store.Release(context.Background(), domain.MediaImage, "h")
	assert.ErrorIs(t, err, domain.ErrUpstream)
	next.AssertNumberOfCalls(t, "Release", 2)
	assert.Error(t, store.HealthCheck(context.Background()))
}

func TestResilientStore_EmptyHandleIsNoop(t *testing.T) {
	next := &mockStore{}
	store := testResilient(next, 1)
	assert.NoError(t, store.Release(context.Background(), domain.MediaImage, ""))
	next.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewMediaStore_LocalDriver(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Media.Local.Dir = t.TempDir()

	store, err := NewMediaStore(context.Background(), cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, config.MediaLocal, store.Backend())
	assert.NoError(t, store.HealthCheck(context.Background()))

	dir, ok := LocalDir(cfg)
	assert.True(t, ok)
	assert.Equal(t, cfg.Media.Local.Dir, dir)

	cfg.Media.Driver = config.MediaMinio
	_, ok = LocalDir(cfg)
	assert.False(t, ok)

	cfg.Media.Driver = "ftp"
	_, err = NewMediaStore(context.Background(), cfg, zap.NewNop().Sugar())
	assert.Error(t, err)
}
