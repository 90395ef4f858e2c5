package memory

import (
	"context"
	"fmt"
	"sync"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
)

type MemoryVideoRepository struct {
	videos map[domain.VideoID]*domain.Video
	mu     sync.RWMutex
}

func NewMemoryVideoRepository() ports.VideoRepository {
	return &MemoryVideoRepository{
		videos: make(map[domain.VideoID]*domain.Video),
	}
}

func (r *MemoryVideoRepository) Create(ctx context.Context, video *domain.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[video.ID]; exists {
		return fmt.Errorf("video already exists: %s", video.ID)
	}

	stored := video.Clone()
	stored.Version = 1
	r.videos[video.ID] = stored
	video.Version = stored.Version
	return nil
}

func (r *MemoryVideoRepository) GetByID(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	video, exists := r.videos[id]
	if !exists {
		return nil, domain.ErrVideoNotFound
	}
	return video.Clone(), nil
}

func (r *MemoryVideoRepository) Update(ctx context.Context, id domain.VideoID, fn ports.VideoMutation) (*domain.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.videos[id]
	if !exists {
		return nil, domain.ErrVideoNotFound
	}

	video := stored.Clone()
	if err := fn(video); err != nil {
		return nil, err
	}

	video.Version++
	r.videos[id] = video.Clone()
	return video, nil
}

func (r *MemoryVideoRepository) IncrementViews(ctx context.Context, id domain.VideoID) (*domain.Video, error) {
	return r.Update(ctx, id, func(v *domain.Video) error {
		v.RecordView()
		return nil
	})
}

func (r *MemoryVideoRepository) Delete(ctx context.Context, id domain.VideoID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.videos[id]; !exists {
		return domain.ErrVideoNotFound
	}

	delete(r.videos, id)
	return nil
}
