package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
)

type MemoryCommentRepository struct {
	comments map[domain.CommentID]*domain.Comment
	mu       sync.RWMutex
}

func NewMemoryCommentRepository() ports.CommentRepository {
	return &MemoryCommentRepository{
		comments: make(map[domain.CommentID]*domain.Comment),
	}
}

func (r *MemoryCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.comments[comment.ID]; exists {
		return fmt.Errorf("comment already exists: %s", comment.ID)
	}

	stored := comment.Clone()
	stored.Version = 1
	r.comments[comment.ID] = stored
	comment.Version = stored.Version
	return nil
}

func (r *MemoryCommentRepository) GetByID(ctx context.Context, id domain.CommentID) (*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, exists := r.comments[id]
	if !exists {
		return nil, domain.ErrCommentNotFound
	}
	return comment.Clone(), nil
}

func (r *MemoryCommentRepository) ListByVideo(ctx context.Context, videoID domain.VideoID) ([]*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comments := []*domain.Comment{}
	for _, c := range r.comments {
		if c.VideoID == videoID {
			comments = append(comments, c.Clone())
		}
	}

	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (r *MemoryCommentRepository) Update(ctx context.Context, id domain.CommentID, fn ports.CommentMutation) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.comments[id]
	if !exists {
		return nil, domain.ErrCommentNotFound
	}

	comment := stored.Clone()
	if err := fn(comment); err != nil {
		return nil, err
	}

	comment.Version++
	r.comments[id] = comment.Clone()
	return comment, nil
}

func (r *MemoryCommentRepository) Delete(ctx context.Context, id domain.CommentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.comments[id]; !exists {
		return domain.ErrCommentNotFound
	}

	delete(r.comments, id)
	return nil
}

func (r *MemoryCommentRepository) DeleteByVideo(ctx context.Context, videoID domain.VideoID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, c := range r.comments {
		if c.VideoID == videoID {
			delete(r.comments, id)
			removed++
		}
	}
	return removed, nil
}
