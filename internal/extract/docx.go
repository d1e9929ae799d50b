package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// fromDOCX pulls paragraph text out of the WordprocessingML main document
// part. A .docx file is a zip archive; the visible text lives in w:t runs
// inside word/document.xml.
func fromDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	var doc *zip.File
	for _, file := range reader.File {
		if file.Name == "word/document.xml" {
			doc = file
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx has no word/document.xml")
	}
	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("read docx document: %w", err)
	}
	defer rc.Close()

	text, err := wordMLText(rc)
	if err != nil {
		return "", fmt.Errorf("parse docx document: %w", err)
	}
	out := Normalize(text)
	if out == "" {
		return "", ErrNoText
	}
	return out, nil
}

func wordMLText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var buf strings.Builder
	inText := false
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "t":
				inText = true
			case "br", "cr":
				buf.WriteString("\n")
			case "tab":
				buf.WriteString(" ")
			}
		case xml.EndElement:
			switch tok.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				buf.Write(tok)
			}
		}
	}
	return buf.String(), nil
}
