package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"slot-game-backend/internal/features/wallet/models"
	"slot-game-backend/internal/features/wallet/repository"
)

const keyPrefixUser = "user:"

type userRepository struct {
	client *redis.Client
}

// NewUserRepository returns a redis-backed UserRepository.
func NewUserRepository(client *redis.Client) repository.UserRepository {
	return &userRepository{client: client}
}

func makeUserKey(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefixUser, userID)
}

func (r *userRepository) Get(ctx context.Context, userID int64) (*models.User, error) {
	data, err := r.client.Get(ctx, makeUserKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Save(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return r.client.Set(ctx, makeUserKey(user.ID), data, 0).Err()
}
