package user

import (
	"context"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// Service handles account lifecycle and credential checks.
type Service struct {
	repo   Repository
	hasher Hasher
}

// NewService creates a user service.
func NewService(repo Repository, hasher Hasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

// Register creates a regular account. Name collisions are conflicts.
func (s *Service) Register(ctx context.Context, name, password string) (*User, error) {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup user")
	}
	if existing != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "user already exists", nil)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "hash password")
	}

	u := &User{Name: name, PasswordHash: hash}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create user")
	}
	return u, nil
}

// Authenticate verifies credentials. Soft-deleted accounts are reported as
// bad credentials so their existence is not revealed; banned accounts are
// rejected explicitly.
func (s *Service) Authenticate(ctx context.Context, name, password string) (*User, error) {
	u, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup user")
	}
	if u == nil || u.IsDeleted || !s.hasher.Compare(u.PasswordHash, password) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "invalid username or password", nil)
	}
	if u.IsBanned {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "account is banned", nil)
	}
	return u, nil
}

// GetByID returns the user or a not-found error.
func (s *Service) GetByID(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup user")
	}
	if u == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "user not found", nil)
	}
	return u, nil
}

// List returns active or soft-deleted users, paged.
func (s *Service) List(ctx context.Context, deleted bool, p query.Pagination) ([]*User, error) {
	users, err := s.repo.List(ctx, deleted, p)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list users")
	}
	return users, nil
}

// SoftDelete marks a non-admin account as deleted.
func (s *Service) SoftDelete(ctx context.Context, id uint) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "cannot delete an admin account", nil)
	}
	if u.IsDeleted {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "user already deleted", nil)
	}
	u.IsDeleted = true
	if err := s.repo.Update(ctx, u); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update user")
	}
	return nil
}

// UndoSoftDelete restores a soft-deleted account.
func (s *Service) UndoSoftDelete(ctx context.Context, id uint) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !u.IsDeleted {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "user is not deleted", nil)
	}
	u.IsDeleted = false
	if err := s.repo.Update(ctx, u); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update user")
	}
	return nil
}

// HardDelete removes an account permanently. Only soft-deleted, non-admin
// accounts qualify.
func (s *Service) HardDelete(ctx context.Context, id uint) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin || !u.IsDeleted {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "user must be soft-deleted first", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete user")
	}
	return nil
}

// Ban blocks an active, non-admin account.
func (s *Service) Ban(ctx context.Context, id uint) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "cannot ban an admin account", nil)
	}
	if u.IsDeleted || u.IsBanned {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "user is deleted or already banned", nil)
	}
	u.IsBanned = true
	if err := s.repo.Update(ctx, u); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update user")
	}
	return nil
}

// Unban lifts a ban.
func (s *Service) Unban(ctx context.Context, id uint) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsDeleted || !u.IsBanned {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "user is deleted or not banned", nil)
	}
	u.IsBanned = false
	if err := s.repo.Update(ctx, u); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update user")
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin account if it does not exist.
func (s *Service) EnsureAdmin(ctx context.Context, name, password string) error {
	if name == "" {
		return nil
	}
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup admin user")
	}
	if existing != nil {
		return nil
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "hash admin password")
	}
	u := &User{Name: name, PasswordHash: hash, IsAdmin: true}
	if err := s.repo.Create(ctx, u); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create admin user")
	}
	return nil
}
