package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashContent computes the canonical content hash of a piece of text.
// The hash is used both for change detection during re-ingestion and as
// a natural deduplication key; the same content always produces the same
// hash.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
