package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText means the document was readable but held no extractable text.
var ErrNoText = errors.New("no text extracted from document")

// FromUpload extracts plain text from an uploaded resume. The format is
// picked by file extension: PDF and DOCX get real parsers, everything else
// is treated as UTF-8 text.
func FromUpload(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return fromPDF(data)
	case ".docx":
		return fromDOCX(data)
	default:
		text := Normalize(string(data))
		if text == "" {
			return "", ErrNoText
		}
		return text, nil
	}
}

func fromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip problematic pages instead of failing entirely
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n\n")
	}
	out := Normalize(buf.String())
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}

var multiNewline = regexp.MustCompile(`\n{3,}`)

// Normalize strips NUL bytes and invalid UTF-8, unifies line endings, and
// collapses runs of blank lines while keeping paragraph breaks intact so
// downstream chunking can still cut on them.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	text = strings.Join(lines, "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
