package chunker

import "unicode"

const (
	// DefaultSize and DefaultOverlap mirror the splitter settings used for
	// every ingestion path. Measured in runes.
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Splitter cuts text into overlapping windows of at most size runes,
// preferring natural boundaries (paragraph, then sentence, then whitespace)
// over hard character cuts. Splitting is deterministic: identical text and
// configuration always yield the identical chunk sequence, which downstream
// dedup depends on.
type Splitter struct {
	size    int
	overlap int
}

// New builds a splitter. Invalid settings fall back to the defaults.
func New(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split returns the ordered chunk sequence for text. Every chunk except
// possibly the last starts exactly overlap runes before the previous chunk's
// end, so consecutive chunks share exactly the configured overlap.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	var chunks []string
	start := 0
	for {
		hardEnd := start + s.size
		if hardEnd >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		end := s.cut(runes, start, hardEnd)
		chunks = append(chunks, string(runes[start:end]))
		start = end - s.overlap
	}
}

// cut picks the window end within (start+overlap, hardEnd]. The lower bound
// guarantees the next window advances past the overlap.
func (s *Splitter) cut(runes []rune, start, hardEnd int) int {
	min := start + s.overlap + 1
	if min > hardEnd {
		return hardEnd
	}
	if end := lastParagraphCut(runes, min, hardEnd); end > 0 {
		return end
	}
	if end := lastSentenceCut(runes, min, hardEnd); end > 0 {
		return end
	}
	if end := lastWhitespaceCut(runes, min, hardEnd); end > 0 {
		return end
	}
	return hardEnd
}

// lastParagraphCut returns the position just after the last blank-line break
// in [min, hardEnd], or 0.
func lastParagraphCut(runes []rune, min, hardEnd int) int {
	for end := hardEnd; end >= min; end-- {
		if end >= 2 && runes[end-1] == '\n' && runes[end-2] == '\n' {
			return end
		}
	}
	return 0
}

// lastSentenceCut returns the position just after the last sentence
// terminator followed by whitespace (or the window edge) in [min, hardEnd],
// or 0.
func lastSentenceCut(runes []rune, min, hardEnd int) int {
	for end := hardEnd; end >= min; end-- {
		c := runes[end-1]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		if end == len(runes) || unicode.IsSpace(runes[end]) {
			return end
		}
	}
	return 0
}

// lastWhitespaceCut returns the position just after the last whitespace rune
// in [min, hardEnd], or 0.
func lastWhitespaceCut(runes []rune, min, hardEnd int) int {
	for end := hardEnd; end >= min; end-- {
		if unicode.IsSpace(runes[end-1]) {
			return end
		}
	}
	return 0
}
