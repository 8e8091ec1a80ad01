package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// GenerateID generates a random hex ID
func GenerateID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// SecureCompare reports whether the presented token matches the configured
// secret without leaking timing information about the secret's content.
// An empty secret disables authentication and always matches; callers opt
// into that trade-off by leaving the secret unset.
func SecureCompare(presented, secret string) bool {
	if secret == "" {
		return true
	}
	// ConstantTimeCompare rejects mismatched lengths up front, which leaks
	// only the length, and compares matching lengths in constant time.
	return subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) == 1
}
