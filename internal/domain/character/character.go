package character

import (
	"context"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
)

// Character pairs a unique name with the system prompt injected into every
// model call made on its behalf.
type Character struct {
	ID           uint
	Name         string
	SystemPrompt string
}

// Repository is the persistence contract for characters. Lookups return
// (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, c *Character) error
	FindByID(ctx context.Context, id uint) (*Character, error)
	FindByName(ctx context.Context, name string) (*Character, error)
	Update(ctx context.Context, c *Character) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, p query.Pagination) ([]*Character, error)
}
