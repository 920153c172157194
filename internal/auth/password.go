// password.go wraps bcrypt for account password hashing. Hashes are stored on
// the user row; plaintext passwords never are.
package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt truncates input beyond 72 bytes, so longer passwords are rejected
// instead of silently weakened.
const maxPasswordLength = 72

// ErrPasswordTooShort is returned for passwords under the minimum length.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// ErrPasswordTooLong is returned for passwords over the bcrypt input limit.
var ErrPasswordTooLong = errors.New("password exceeds maximum length")

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", ErrPasswordTooShort
	}
	if len(password) > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
