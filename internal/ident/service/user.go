package service

import (
	"context"

	"github.com/quokkaworks/ident/internal/ident/domain"
	"github.com/quokkaworks/ident/internal/ident/store"
)

// UserService exposes read access to the identity directory for the profile
// and admin surfaces.
type UserService struct {
	Store store.Store
}

// GetUser fetches a single identity by id.
func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// ListUsers returns every identity, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

// CountUsers returns the directory size.
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.Store.Users().CountUsers(ctx)
}
