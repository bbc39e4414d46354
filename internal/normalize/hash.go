package normalize

import (
	"crypto/sha256"
	"fmt"
)

// TextHash computes the hex-encoded SHA-256 of a raw source blob. Two fetches
// of an unchanged export hash the same, which lets ingest skip re-imports.
func TextHash(body []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(body))
}
