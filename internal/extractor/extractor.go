// Package extractor turns uploaded document bytes into a single normalized text.
//
// Every exported function is a pure transform: input bytes are never modified or
// retained, and the returned text is valid UTF-8 without NUL bytes.
package extractor

import (
	"fmt"
	"strings"

	"knowledge-ingest/internal/models"
)

// Extract dispatches on the declared format of doc
func Extract(doc models.RawDocument) (string, error) {
	switch doc.Format {
	case models.FormatPDF:
		return ExtractPDF(doc.Data)
	case models.FormatCSV:
		return ExtractCSV(doc.Data)
	case models.FormatDOCX:
		return ExtractDOCX(doc.Data)
	case models.FormatXLSX:
		return ExtractXLSX(doc.Data)
	case models.FormatMarkdown:
		return ExtractMarkdown(doc.Data)
	case models.FormatText:
		return ExtractText(doc.Data), nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, doc.Format)
	}
}

// ExtractText returns plain text input as is, apart from sanitizing
func ExtractText(data []byte) string {
	return sanitize(string(data))
}

// sanitize drops NUL bytes and invalid UTF-8 sequences
func sanitize(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}

func extractionError(format models.Format, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrExtraction, format, err)
}
