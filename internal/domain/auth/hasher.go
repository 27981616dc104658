package auth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword returns the hex SHA-256 digest of the plaintext. The digest
// is deterministic and unsalted: verification recomputes the digest and
// compares for equality, and the same password always stores the same value.
func HashPassword(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
