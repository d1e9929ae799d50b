package ledger

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a deterministic hex digest of the UTF-8 bytes of text.
// Used only for duplicate detection, not for anything security sensitive.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
