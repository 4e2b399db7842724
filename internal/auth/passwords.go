package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials indicates the submitted secret does not match the stored hash.
var ErrInvalidCredentials = errors.New("invalid user credentials")

// MinPasswordLength is the shortest secret accepted at registration.
const MinPasswordLength = 8

// BcryptHasher hashes and verifies secrets with bcrypt.
type BcryptHasher struct {
	Cost int
}

// Hash returns the bcrypt hash of secret.
func (h BcryptHasher) Hash(secret string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare verifies secret against hash.
func (h BcryptHasher) Compare(hash, secret string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}
