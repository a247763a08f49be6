package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// maxPasswordBytes is the bcrypt input limit. Longer inputs are cut to this
// length before hashing and before comparison so hashes stay compatible with
// implementations that truncate silently.
const maxPasswordBytes = 72

// dummyHash is compared against when a login names an unknown user, so the
// response time does not reveal whether the username exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("gate-pass-dummy-password"), bcryptCost)

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncatePassword(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash. A malformed or empty
// hash never matches.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(password)) == nil
}

// BurnPasswordCheck spends the same time as a real comparison.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, truncatePassword(password))
}
