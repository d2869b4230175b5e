package common

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the hex encoded SHA-256 digest of content.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ContentEquals reports whether a and b have the same SHA-256 digest.
// Nil and empty inputs are equal.
func ContentEquals(a, b []byte) bool {
	return sha256.Sum256(a) == sha256.Sum256(b)
}
