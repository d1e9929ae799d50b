package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestFromUploadPlainText(t *testing.T) {
	text, err := FromUpload("resume.txt", []byte("  Senior   Engineer\r\n\r\n\r\nPython, Go  "))
	if err != nil {
		t.Fatalf("FromUpload: %v", err)
	}
	want := "Senior Engineer\n\nPython, Go"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
}

func TestFromUploadEmptyText(t *testing.T) {
	if _, err := FromUpload("resume.txt", []byte("   \n \n ")); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestFromUploadDOCX(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Work Experience</w:t></w:r></w:p>
    <w:p><w:r><w:t>Built services in </w:t></w:r><w:r><w:t>Go</w:t></w:r></w:p>
  </w:body>
</w:document>`
	text, err := FromUpload("resume.docx", buildDOCX(t, doc))
	if err != nil {
		t.Fatalf("FromUpload: %v", err)
	}
	if !strings.Contains(text, "Work Experience") {
		t.Fatalf("missing paragraph text: %q", text)
	}
	if !strings.Contains(text, "Built services in Go") {
		t.Fatalf("adjacent runs should join without a break: %q", text)
	}
	if !strings.Contains(text, "Work Experience\n\nBuilt") {
		t.Fatalf("paragraphs should be separated by a blank line: %q", text)
	}
}

func TestFromUploadDOCXLineBreaks(t *testing.T) {
	doc := `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p><w:r><w:t>line one</w:t><w:br/><w:t>line two</w:t></w:r></w:p></w:body></w:document>`
	text, err := FromUpload("resume.docx", buildDOCX(t, doc))
	if err != nil {
		t.Fatalf("FromUpload: %v", err)
	}
	if text != "line one\nline two" {
		t.Fatalf("text = %q", text)
	}
}

func TestFromUploadDOCXMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, _ := w.Create("other.xml")
	f.Write([]byte("<x/>"))
	w.Close()
	if _, err := FromUpload("resume.docx", buf.Bytes()); err == nil {
		t.Fatalf("expected error for docx without a main document part")
	}
}

func TestFromUploadBadPDF(t *testing.T) {
	if _, err := FromUpload("resume.pdf", []byte("definitely not a pdf")); err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
}

func TestNormalizeStripsControlBytes(t *testing.T) {
	got := Normalize("a\x00b\rc")
	if got != "a b\nc" {
		t.Fatalf("Normalize = %q", got)
	}
}
