package chunker

import (
	"strings"
	"testing"
)

func TestSplitEmptyText(t *testing.T) {
	s := New(100, 20)
	if chunks := s.Split(""); chunks != nil {
		t.Fatalf("expected nil for empty text, got %d chunks", len(chunks))
	}
}

func TestSplitShortTextIsOneChunk(t *testing.T) {
	s := New(100, 20)
	chunks := s.Split("short resume text")
	if len(chunks) != 1 || chunks[0] != "short resume text" {
		t.Fatalf("short text should be a single chunk, got %v", chunks)
	}
}

func TestSplitDeterministic(t *testing.T) {
	s := New(50, 10)
	text := strings.Repeat("Led a team of five engineers. Shipped releases. ", 20)
	first := s.Split(text)
	second := s.Split(text)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitRespectsMaxSize(t *testing.T) {
	s := New(50, 10)
	text := strings.Repeat("abcdefghij", 30)
	for i, chunk := range s.Split(text) {
		if n := len([]rune(chunk)); n > 50 {
			t.Fatalf("chunk %d length = %d, exceeds max 50", i, n)
		}
	}
}

func TestSplitExactOverlap(t *testing.T) {
	s := New(60, 15)
	text := strings.Repeat("One sentence here. Another sentence there. ", 15)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 0; i < len(chunks)-1; i++ {
		prev := []rune(chunks[i])
		next := []rune(chunks[i+1])
		tail := string(prev[len(prev)-15:])
		head := string(next[:15])
		if tail != head {
			t.Fatalf("chunks %d/%d overlap mismatch: %q vs %q", i, i+1, tail, head)
		}
	}
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	s := New(40, 5)
	text := "First short sentence ends here. Second sentence continues for quite a while after that."
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], ".") && !strings.HasSuffix(chunks[0], ". ") {
		t.Fatalf("first chunk should end at a sentence boundary, got %q", chunks[0])
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	s := New(60, 10)
	text := "Paragraph one has some text in it.\n\nParagraph two follows with more text than fits in one window."
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0], "\n\n") {
		t.Fatalf("first chunk should end at the paragraph break, got %q", chunks[0])
	}
}

func TestSplitCoversAllText(t *testing.T) {
	s := New(30, 8)
	text := strings.Repeat("xyz ", 40)
	chunks := s.Split(text)
	// Reconstruct by dropping each chunk's leading overlap.
	var sb strings.Builder
	for i, chunk := range chunks {
		runes := []rune(chunk)
		if i == 0 {
			sb.WriteString(chunk)
			continue
		}
		sb.WriteString(string(runes[8:]))
	}
	if sb.String() != text {
		t.Fatalf("reassembled text does not match input")
	}
}
