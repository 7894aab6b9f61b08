// Package fingerprint derives deterministic content fingerprints for
// extracted work artifacts. Fingerprints are cache key components, so they
// must be stable across runs and process restarts: no salt, no truncation.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// Content returns the hex-encoded SHA-256 digest of the provided content.
func Content(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
