package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SanitizePathSegment maps an identifier to a string safe to use as a single
// file or directory name. Anything outside [a-zA-Z0-9._-] becomes '_'. When
// any character was replaced, a short digest of the original identifier is
// appended so distinct identifiers never alias to the same name.
func SanitizePathSegment(id string) string {
	trimmed := strings.TrimSpace(id)
	changed := trimmed != id
	var sb strings.Builder
	sb.Grow(len(trimmed))
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
			changed = true
		}
	}
	out := sb.String()
	// Dot-only names would escape into parent directories.
	if out != "" && strings.Trim(out, ".") == "" {
		out = strings.ReplaceAll(out, ".", "_")
		changed = true
	}
	if out == "" {
		out = "_"
		changed = true
	}
	if changed {
		sum := sha256.Sum256([]byte(id))
		out += "-" + hex.EncodeToString(sum[:4])
	}
	return out
}
