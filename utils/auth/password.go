package auth

import (
	"errors"
	"fmt"

	"github.com/sahilchouksey/admission-bridge/utils/validation"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores everything past 72 bytes
const maxPasswordBytes = 72

// HashCost is the bcrypt cost for student, admin and college account passwords
const HashCost = 12

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", validation.PasswordMinLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	ErrPasswordMismatch = errors.New("password does not match")
)

// HashPassword hashes an account password. Registration and the seeder share
// the length rules enforced by validation.ValidatePassword.
func HashPassword(password string) (string, error) {
	switch {
	case len(password) < validation.PasswordMinLength:
		return "", ErrPasswordTooShort
	case len(password) > maxPasswordBytes:
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword compares a login attempt with the stored hash
func VerifyPassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
