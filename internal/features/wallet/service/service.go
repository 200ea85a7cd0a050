package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/xssnick/tonutils-go/address"

	"slot-game-backend/internal/features/wallet/models"
	"slot-game-backend/internal/features/wallet/repository"
)

// ErrInvalidAddress is returned when a submitted wallet address does not
// parse as a TON address.
var ErrInvalidAddress = errors.New("invalid wallet address")

// Service is the wallet directory: user registration plus wallet address
// storage and validation.
type Service struct {
	repo repository.UserRepository
}

// NewService creates the wallet directory service.
func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// Register creates the user on first contact and keeps the username fresh
// on subsequent ones. The wallet address is never touched here.
func (s *Service) Register(ctx context.Context, userID int64, username string) error {
	user, err := s.repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return s.repo.Save(ctx, &models.User{ID: userID, Username: username})
	}
	if err != nil {
		return err
	}
	if user.Username == username {
		return nil
	}
	user.Username = username
	return s.repo.Save(ctx, user)
}

// ValidateAddress parses addr and returns its canonical form.
func (s *Service) ValidateAddress(addr string) (string, error) {
	parsed, err := address.ParseAddr(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return parsed.String(), nil
}

// SetWallet validates and stores the user's payout address, registering
// the user first if needed. Returns the canonical address.
func (s *Service) SetWallet(ctx context.Context, userID int64, username, addr string) (string, error) {
	canonical, err := s.ValidateAddress(addr)
	if err != nil {
		return "", err
	}

	user, err := s.repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		user = &models.User{ID: userID, Username: username}
	} else if err != nil {
		return "", err
	}
	user.Wallet = canonical
	if username != "" {
		user.Username = username
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return "", err
	}
	return canonical, nil
}

// GetWallet returns the user's payout address, or empty when the user is
// unknown or has not registered one.
func (s *Service) GetWallet(ctx context.Context, userID int64) (string, error) {
	user, err := s.repo.Get(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.Wallet, nil
}
