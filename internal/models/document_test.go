package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"pdf":      FormatPDF,
		"PDF":      FormatPDF,
		".csv":     FormatCSV,
		" docx ":   FormatDOCX,
		"xlsx":     FormatXLSX,
		"text":     FormatText,
		"markdown": FormatMarkdown,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pptx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFormatFromFilename(t *testing.T) {
	f, err := FormatFromFilename("/tmp/reports/Q3.Summary.PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	f, err = FormatFromFilename("people.csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = FormatFromFilename("README")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestUnsupportedFormatIsExtractionError(t *testing.T) {
	_, err := ParseFormat("odt")
	assert.ErrorIs(t, err, ErrExtraction)
}
