package utils

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var (
	absentOnce sync.Once
	absentHash []byte
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hashed. An empty hash means the
// account does not exist; pw is still compared against a fixed hash so both
// outcomes take the same time.
func CheckPassword(hashed, pw string) bool {
	if hashed == "" {
		absentOnce.Do(func() {
			absentHash, _ = bcrypt.GenerateFromPassword([]byte("absent-account"), bcryptCost)
		})
		_ = bcrypt.CompareHashAndPassword(absentHash, []byte(pw))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
