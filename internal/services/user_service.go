package services

import (
	"context"
	"time"

	"github.com/pawsafety/pawsafety-backend/internal/models"
)

// UserService exposes read access to user profiles.
type UserService struct {
	repo UserStore
	now  func() time.Time
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{
		repo: repo,
		now:  time.Now,
	}
}

// GetUserByID retrieves a user by ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// IsAccountActive reports whether the user may use social features right now.
func (s *UserService) IsAccountActive(ctx context.Context, id string) (bool, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsActive(s.now()), nil
}
