package ai

import (
	"encoding/json"
	"strings"
)

// Model replies are asked to be pure JSON but often arrive wrapped in prose
// or markdown fences. These helpers scan the reply for the first well-formed
// JSON value of the expected shape instead of requiring the whole reply to
// parse.

// DecodeObject finds the first balanced {...} in reply that unmarshals into
// out. One second-chance pass normalizes quote and space artifacts before
// giving up.
func DecodeObject(reply string, out any) bool {
	return decodeDelimited(reply, '{', '}', out)
}

// DecodeArray finds the first balanced [...] in reply that unmarshals into
// out.
func DecodeArray(reply string, out any) bool {
	return decodeDelimited(reply, '[', ']', out)
}

func decodeDelimited(reply string, open, closing byte, out any) bool {
	for _, candidate := range []string{reply, normalizeArtifacts(reply)} {
		if tryDecode(candidate, open, closing, out) {
			return true
		}
	}
	return false
}

func tryDecode(s string, open, closing byte, out any) bool {
	for start := 0; start < len(s); start++ {
		if s[start] != open {
			continue
		}
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case open:
				depth++
			case closing:
				depth--
				if depth == 0 {
					if json.Unmarshal([]byte(s[start:i+1]), out) == nil {
						return true
					}
					// Keep scanning from the next opener.
					i = len(s)
				}
			}
		}
	}
	return false
}

// normalizeArtifacts rewrites typographic quotes and non-breaking spaces
// that models occasionally emit in place of plain JSON punctuation.
func normalizeArtifacts(s string) string {
	replacer := strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
		" ", " ",
	)
	return replacer.Replace(s)
}
