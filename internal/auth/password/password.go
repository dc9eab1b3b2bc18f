package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// Cost is the bcrypt work factor used for new hashes.
	Cost      = 12
	MinLength = 8
)

var ErrTooShort = errors.New("password too short")

func Hash(password string) (string, error) {
	if len(password) < MinLength {
		return "", ErrTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches the bcrypt hash.
func Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
