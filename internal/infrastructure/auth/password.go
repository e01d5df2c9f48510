package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/cyrene-ai/cyrene-server/internal/domain/user"
)

// BcryptHasher implements password hashing with bcrypt at the default cost.
type BcryptHasher struct{}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{}
}

func (BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var _ user.Hasher = (*BcryptHasher)(nil)
