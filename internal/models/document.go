package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is the declared format tag of an uploaded document
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatCSV      Format = "csv"
	FormatDOCX     Format = "docx"
	FormatXLSX     Format = "xlsx"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

var formatAliases = map[string]Format{
	"pdf":      FormatPDF,
	"csv":      FormatCSV,
	"docx":     FormatDOCX,
	"xlsx":     FormatXLSX,
	"txt":      FormatText,
	"text":     FormatText,
	"md":       FormatMarkdown,
	"markdown": FormatMarkdown,
}

// ParseFormat maps a user supplied tag (case insensitive, optional leading dot) to a Format
func ParseFormat(tag string) (Format, error) {
	key := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), ".")
	if f, ok := formatAliases[key]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
}

// FormatFromFilename derives the format tag from the file extension
func FormatFromFilename(name string) (Format, error) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, name)
	}
	return ParseFormat(ext)
}

// RawDocument is an uploaded document as handed over by the caller.
// Extractors read Data and never modify or keep it.
type RawDocument struct {
	Name   string
	Format Format
	Data   []byte
}

// ExtractedDocument is the normalized text of one RawDocument
type ExtractedDocument struct {
	Name   string
	Format Format
	Text   string
}

// EmbeddedDocument pairs an extracted text with its vector
type EmbeddedDocument struct {
	Name      string
	Format    Format
	Content   string
	Embedding []float32
}
