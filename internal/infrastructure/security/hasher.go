package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/doeshing/kidchat/internal/ports"
)

// BcryptHasher implements PasswordHasher with bcrypt, which salts every hash.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher; a cost of 0 selects bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash implements ports.PasswordHasher.
func (h *BcryptHasher) Hash(password string) (string, error) {
	raw, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Compare implements ports.PasswordHasher. It fails closed on an empty hash.
func (h *BcryptHasher) Compare(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var _ ports.PasswordHasher = (*BcryptHasher)(nil)
