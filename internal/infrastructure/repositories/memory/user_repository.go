package memory

import (
	"context"
	"fmt"
	"sync"

	"vidhub/internal/core/domain"
	"vidhub/internal/core/ports"
)

type MemoryUserRepository struct {
	users   map[domain.UserID]*domain.User
	byEmail map[string]domain.UserID
	mu      sync.RWMutex
}

func NewMemoryUserRepository() ports.UserRepository {
	return &MemoryUserRepository{
		users:   make(map[domain.UserID]*domain.User),
		byEmail: make(map[string]domain.UserID),
	}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrEmailTaken
	}
	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("user already exists: %s", user.ID)
	}

	stored := user.Clone()
	stored.Version = 1
	r.users[user.ID] = stored
	r.byEmail[user.Email] = user.ID
	user.Version = stored.Version
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[email]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return r.users[id].Clone(), nil
}

func (r *MemoryUserRepository) GetByIDs(ctx context.Context, ids []domain.UserID) (map[domain.UserID]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[domain.UserID]*domain.User, len(ids))
	for _, id := range ids {
		if user, exists := r.users[id]; exists {
			found[id] = user.Clone()
		}
	}
	return found, nil
}

// UpdatePair holds the write lock for the whole mutation, so both users
// change together or not at all. When a == b the same copy is passed twice.
func (r *MemoryUserRepository) UpdatePair(ctx context.Context, a, b domain.UserID, fn ports.UserMutation) (*domain.User, *domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	storedA, exists := r.users[a]
	if !exists {
		return nil, nil, domain.ErrUserNotFound
	}
	storedB, exists := r.users[b]
	if !exists {
		return nil, nil, domain.ErrUserNotFound
	}

	userA := storedA.Clone()
	userB := userA
	if a != b {
		userB = storedB.Clone()
	}

	if err := fn(userA, userB); err != nil {
		return nil, nil, err
	}

	userA.Version++
	r.users[a] = userA.Clone()
	if a != b {
		userB.Version++
		r.users[b] = userB.Clone()
	}
	return userA, userB, nil
}
