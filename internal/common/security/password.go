package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost matches ten salt rounds.
const PasswordCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// CheckDummyPassword spends the same bcrypt work as CheckPasswordHash against
// a hash no password matches. Login calls it for unknown usernames.
func CheckDummyPassword(password string) {
	dummyHashOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("dummy-password-never-matches"), PasswordCost)
		if err != nil {
			panic("security: cannot build dummy password hash: " + err.Error())
		}
		dummyHash = h
	})
	bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
