package character

import (
	"context"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

// Service handles character administration and lookup.
type Service struct {
	repo Repository
}

// NewService creates a character service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a character with a unique name.
func (s *Service) Create(ctx context.Context, name, systemPrompt string) (*Character, error) {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup character")
	}
	if existing != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "character already exists", nil)
	}
	c := &Character{Name: name, SystemPrompt: systemPrompt}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "create character")
	}
	return c, nil
}

// GetByName returns the character or a not-found error.
func (s *Service) GetByName(ctx context.Context, name string) (*Character, error) {
	c, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup character")
	}
	if c == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "character not found", nil)
	}
	return c, nil
}

// UpdatePrompt replaces the system prompt of an existing character.
func (s *Service) UpdatePrompt(ctx context.Context, name, systemPrompt string) error {
	c, err := s.GetByName(ctx, name)
	if err != nil {
		return err
	}
	c.SystemPrompt = systemPrompt
	if err := s.repo.Update(ctx, c); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "update character")
	}
	return nil
}

// Delete removes a character by id.
func (s *Service) Delete(ctx context.Context, id uint) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "lookup character")
	}
	if c == nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "character not found", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "delete character")
	}
	return nil
}

// List returns characters, paged.
func (s *Service) List(ctx context.Context, p query.Pagination) ([]*Character, error) {
	chars, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "list characters")
	}
	return chars, nil
}
