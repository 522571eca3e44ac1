// Package authutil hashes and checks organization admin passwords.
package authutil

import (
	"errors"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used unless SetCost is called.
const DefaultCost = 12

// ErrInvalidCost is returned by SetCost for values bcrypt does not accept.
var ErrInvalidCost = errors.New("bcrypt cost out of range")

var cost atomic.Int32

func init() {
	cost.Store(DefaultCost)
}

// SetCost changes the bcrypt work factor for hashes created from now on.
// Existing hashes keep verifying because bcrypt stores the cost in the hash.
func SetCost(c int) error {
	if c < bcrypt.MinCost || c > bcrypt.MaxCost {
		return ErrInvalidCost
	}
	cost.Store(int32(c))
	return nil
}

// Cost returns the current bcrypt work factor.
func Cost() int {
	return int(cost.Load())
}

// HashPassword returns a salted bcrypt hash of password.
// Passwords longer than 72 bytes are rejected by bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. Malformed hashes
// never match.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
