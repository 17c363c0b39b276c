// Package auth implements credential hashing and the password-recovery token
// lifecycle. Passwords only ever exist as bcrypt hashes outside of a request;
// recovery tokens are random, single-use, and stored directly on the profile
// row so issuance and redemption stay atomic per account.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a salted bcrypt digest of the plaintext. Failure here
// is an internal fault (invalid cost, plaintext over bcrypt's length cap) and
// aborts the request.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash. A
// mismatch is an expected outcome, never an error.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
