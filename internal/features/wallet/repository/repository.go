package repository

import (
	"context"
	"errors"

	"slot-game-backend/internal/features/wallet/models"
)

// ErrUserNotFound is returned when no record exists for the user id.
var ErrUserNotFound = errors.New("user not found")

// UserRepository stores registered users keyed by telegram id.
type UserRepository interface {
	Get(ctx context.Context, userID int64) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}
