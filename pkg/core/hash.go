package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes the content address of data: a SHA-256 digest rendered as a
// lowercase hex string. Chunks, manifests and whole content all share this
// single addressing scheme.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
