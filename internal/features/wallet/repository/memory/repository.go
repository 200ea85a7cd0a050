package memory

import (
	"context"
	"sync"

	"slot-game-backend/internal/features/wallet/models"
	"slot-game-backend/internal/features/wallet/repository"
)

type userRepository struct {
	mu    sync.Mutex
	users map[int64]models.User
}

// NewUserRepository returns an in-memory UserRepository for tests.
func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[int64]models.User)}
}

func (r *userRepository) Get(ctx context.Context, userID int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}
