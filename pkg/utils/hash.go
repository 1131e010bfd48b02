package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns the hex encoded sha256 of data.
// The watch command uses it to tell real content changes from repeated
// notifications about the same file.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
