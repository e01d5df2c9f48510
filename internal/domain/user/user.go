package user

import (
	"context"
	"time"

	"github.com/cyrene-ai/cyrene-server/internal/domain/query"
)

// User is an account holder. Deletion is soft by default; hard deletion is
// only permitted for accounts that were soft-deleted first.
type User struct {
	ID           uint
	Name         string
	PasswordHash string
	IsAdmin      bool
	IsBanned     bool
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository is the persistence contract for users. Lookups return (nil, nil)
// when no row matches.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByName(ctx context.Context, name string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, deleted bool, p query.Pagination) ([]*User, error)
}

// Hasher abstracts the password hashing scheme.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}
