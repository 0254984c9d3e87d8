package credentials

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "bank-wallet/internal/errors"
)

// PasswordHasher salts and hashes passwords with bcrypt. Every call to Hash
// uses a fresh salt, so equal passwords produce different digests.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.NewAppError(apperrors.ValidationFailed, "password must not exceed 72 bytes")
		}
		return "", apperrors.Internal("failed to hash password", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. A malformed digest is a
// mismatch, not an error.
func (h *PasswordHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
