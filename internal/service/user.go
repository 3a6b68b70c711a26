package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/campuslib/library-service/internal/model"
	"github.com/campuslib/library-service/internal/repository"
)

// UserService handles the identity provider's registration hook and role
// administration. Passwords and sessions never pass through here.
type UserService struct {
	log  *zap.Logger
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository, log *zap.Logger) *UserService {
	return &UserService{
		log:  log,
		repo: repo,
	}
}

// Register is the side effect of the external identity provider's user
// creation event: profile row plus the default student grant. Replays of
// the hook are harmless.
func (s *UserService) Register(ctx context.Context, req model.RegisterUserRequest) error {
	return s.repo.RegisterUser(ctx, model.User{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
	})
}

func (s *UserService) GetUser(ctx context.Context, username string) (model.User, error) {
	return s.repo.GetUser(ctx, username)
}

func (s *UserService) GetRoles(ctx context.Context, username string) ([]model.Role, error) {
	return s.repo.GetRoles(ctx, username)
}

func (s *UserService) GrantRole(ctx context.Context, username string, role model.Role) error {
	return s.repo.GrantRole(ctx, username, role)
}

func (s *UserService) RevokeRole(ctx context.Context, username string, role model.Role) error {
	return s.repo.RevokeRole(ctx, username, role)
}
