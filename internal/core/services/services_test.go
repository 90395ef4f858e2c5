package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
	"vidhub/internal/infrastructure/repositories/memory"
	"vidhub/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeMedia keeps uploaded assets in memory.
type fakeMedia struct {
	mu        sync.Mutex
	seq       int
	assets    map[string]string
	released  []string
	uploadErr error
	uploads   int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{assets: make(map[string]string)}
}

func (m *fakeMedia) Upload(ctx context.Context, kind domain.MediaKind, upload ports.MediaUpload) (domain.MediaRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	if m.uploadErr != nil {
		return domain.MediaRef{}, m.uploadErr
	}
	data, err := io.ReadAll(upload.Body)
	if err != nil {
		return domain.MediaRef{}, err
	}
	m.seq++
	handle := fmt.Sprintf("%s/%d", kind, m.seq)
	m.assets[handle] = string(data)
	return domain.MediaRef{URL: "https://media.test/" + handle, Handle: handle}, nil
}

func (m *fakeMedia) Release(ctx context.Context, kind domain.MediaKind, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assets, handle)
	m.released = append(m.released, handle)
	return nil
}

func (m *fakeMedia) live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assets)
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingMetrics) RecordAction(action, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[action+"/"+outcome]++
}

func (c *countingMetrics) get(action, outcome string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[action+"/"+outcome]
}

type fixture struct {
	users      ports.UserRepository
	videos     ports.VideoRepository
	comments   ports.CommentRepository
	media      *fakeMedia
	metrics    *countingMetrics
	auth       AuthService
	userSvc    ports.UserService
	videoSvc   ports.VideoService
	engagement ports.EngagementService
	commentSvc ports.CommentService
}

func newFixture(t *testing.T, deletePolicy string) *fixture {
	t.Helper()
	logger := zap.NewNop().Sugar()

	f := &fixture{
		users:    memory.NewMemoryUserRepository(),
		videos:   memory.NewMemoryVideoRepository(),
		comments: memory.NewMemoryCommentRepository(),
		media:    newFakeMedia(),
		metrics:  &countingMetrics{},
		auth:     NewAuthService("test-secret", config.DefaultConfig().Auth.TokenTTL, 4),
	}
	f.userSvc = NewUserService(f.users, f.media, f.auth, f.metrics, logger)
	f.videoSvc = NewVideoService(f.videos, f.comments, f.media, deletePolicy, f.metrics, logger)
	f.engagement = NewEngagementService(f.videos, f.metrics, logger)
	f.commentSvc = NewCommentService(f.comments, f.videos, f.users, f.metrics, logger)
	return f
}

func upload(name, body string) *ports.MediaUpload {
	return &ports.MediaUpload{Name: name, Body: strings.NewReader(body), Size: int64(len(body))}
}

func (f *fixture) signup(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := f.userSvc.Signup(context.Background(), ports.SignupInput{
		ChannelName: "channel " + email,
		Email:       email,
		Password:    "p1",
		Logo:        upload("logo.png", "png"),
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) uploadVideo(t *testing.T, owner domain.UserID) *domain.Video {
	t.Helper()
	video, err := f.videoSvc.Upload(context.Background(), owner, ports.UploadVideoInput{
		Title:     "first",
		Tags:      "go, video",
		Video:     upload("clip.mp4", "frames"),
		Thumbnail: upload("thumb.jpg", "jpg"),
	})
	require.NoError(t, err)
	return video
}

func TestStoredEntities_MarshalEmptySetsAsArrays(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()
	owner := f.signup(t, "sets@x.com")
	video := f.uploadVideo(t, owner.ID)

	storedUser, err := f.userSvc.GetProfile(ctx, owner.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(storedUser)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subscriberBy":[]`)
	assert.Contains(t, string(raw), `"subscribedChannels":[]`)

	storedVideo, err := f.videoSvc.Get(ctx, video.ID)
	require.NoError(t, err)
	raw, err = json.Marshal(storedVideo)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"likedBy":[]`)
	assert.Contains(t, string(raw), `"dislikedBy":[]`)
}
