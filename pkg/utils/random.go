package utils

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// TokenBytes is the entropy of a session token before hex encoding.
const TokenBytes = 32

// GenerateToken returns an unguessable hex token for session identifiers.
func GenerateToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewID generates the UUID identity of a new entity row
func NewID() string {
	return uuid.NewString()
}

// IsID reports whether s parses as a UUID.
func IsID(s string) bool {
	return uuid.Validate(s) == nil
}
