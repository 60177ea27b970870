package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-ingest/internal/models"
)

func TestExtractDispatch(t *testing.T) {
	got, err := Extract(models.RawDocument{Name: "people.csv", Format: models.FormatCSV, Data: []byte("name,age\nAna,30\n")})
	require.NoError(t, err)
	assert.Equal(t, "name: Ana | age: 30", got)

	got, err = Extract(models.RawDocument{Name: "notes.txt", Format: models.FormatText, Data: []byte("plain\x00 text\xff")})
	require.NoError(t, err)
	assert.Equal(t, "plain text", got)

	got, err = Extract(models.RawDocument{Name: "report.pdf", Format: models.FormatPDF, Data: buildPDF(t, textPage("Hello"))})
	require.NoError(t, err)
	assert.Contains(t, got, "Hello")
}

func TestExtractUnsupportedFormat(t *testing.T) {
	_, err := Extract(models.RawDocument{Name: "deck.pptx", Format: "pptx", Data: []byte("x")})
	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
	assert.ErrorIs(t, err, models.ErrExtraction)
}

func TestExtractPDFMislabelled(t *testing.T) {
	_, err := Extract(models.RawDocument{Name: "people.pdf", Format: models.FormatPDF, Data: []byte("name,age\n")})
	assert.ErrorIs(t, err, models.ErrExtraction)
}

func TestExtractionErrorWrapsEveryFormat(t *testing.T) {
	cause := errors.New("walk aborted")
	for _, format := range []models.Format{models.FormatPDF, models.FormatDOCX, models.FormatXLSX, models.FormatMarkdown} {
		t.Run(string(format), func(t *testing.T) {
			err := extractionError(format, cause)
			assert.ErrorIs(t, err, models.ErrExtraction)
			assert.Contains(t, err.Error(), string(format))
			assert.Contains(t, err.Error(), "walk aborted")
		})
	}
}
