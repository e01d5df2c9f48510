package moderation

import (
	"context"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
)

// BannedWord is a single entry of the content-policy word set.
type BannedWord struct {
	ID   uint
	Word string
}

// Repository is the persistence contract for the banned-word set. Lookups
// return (nil, nil) when no row matches.
type Repository interface {
	Add(ctx context.Context, word string) (*BannedWord, error)
	FindByWord(ctx context.Context, word string) (*BannedWord, error)
	Remove(ctx context.Context, id uint) error
	List(ctx context.Context, p query.Pagination) ([]*BannedWord, error)
	All(ctx context.Context) ([]string, error)
}
