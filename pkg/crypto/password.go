package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost = 12
	// SessionIDBytes is the entropy behind a session id
	SessionIDBytes = 32
	// MaxPasswordBytes is where bcrypt stops reading input
	MaxPasswordBytes = 72
)

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

var (
	bcryptGenerateFromPassword = bcrypt.GenerateFromPassword
	randomRead                 = rand.Read
	cost                       = DefaultCost
)

// SetCost sets the cost used for new hashes. Out of range values reset to DefaultCost.
func SetCost(c int) {
	if c < bcrypt.MinCost || c > bcrypt.MaxCost {
		c = DefaultCost
	}
	cost = c
}

// HashPassword refuses input bcrypt would silently truncate
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	h, err := bcryptGenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether hash was made with a cost other than the current one
func NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	return err != nil || c != cost
}

// RandomBytes returns n bytes from crypto/rand
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := randomRead(b); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return b, nil
}

// NewSessionID returns a url-safe, unpadded 43 character id
func NewSessionID() (string, error) {
	b, err := RandomBytes(SessionIDBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
