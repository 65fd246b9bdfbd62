package service

import (
	"context"
	"log/slog"

	"github.com/taskhubapp/taskhub-server/internal/domain"
	"github.com/taskhubapp/taskhub-server/internal/store/sqlite"
)

// UserService exposes the user directory.
type UserService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *sqlite.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.store.ListUsers(ctx)
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.GetUser(ctx, userID)
}
