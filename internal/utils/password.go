package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds accepted at signup.  bcrypt rejects input longer
// than 72 bytes, so the upper bound is in bytes, not characters.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// HashPassword returns a bcrypt hash of plain using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash.  A malformed hash is
// returned as an error so it is not mistaken for a wrong password.
func VerifyPassword(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
