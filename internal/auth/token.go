package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// tokenBytes sizes the bearer token at 160 bits, rendered as 40 hex chars.
const tokenBytes = 20

// NewToken generates an opaque bearer token. The raw value is returned to the
// customer exactly once; only its digest is ever stored.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Digest returns the storage form of a token: a hex SHA3-256 digest. Lookups
// digest the presented credential, so a leaked wallet table cannot be used to
// impersonate customers.
func Digest(token string) string {
	sum := sha3.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
