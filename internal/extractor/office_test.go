package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-ingest/internal/models"
)

func TestExtractDOCX(t *testing.T) {
	body := `<w:p><w:r><w:t>Onboarding guide</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`<w:p><w:r><w:t>Step 1:</w:t></w:r><w:r><w:tab/><w:t xml:space="preserve">sign &amp; return</w:t></w:r></w:p>`

	got, err := ExtractDOCX(buildDOCX(t, body))
	require.NoError(t, err)
	assert.Equal(t, "Onboarding guide\nStep 1:\tsign & return", got)
}

func TestExtractDOCXInvalid(t *testing.T) {
	_, err := ExtractDOCX([]byte("not a zip archive"))
	assert.ErrorIs(t, err, models.ErrExtraction)
}

func TestExtractXLSX(t *testing.T) {
	data := buildXLSX(t, map[string][][]interface{}{
		"People": {
			{"name", "age"},
			{"Ana", 30},
			{"", ""},
			{"Bo", ""},
		},
		"Empty": {
			{"only", "header"},
		},
	}, "People", "Empty")

	got, err := ExtractXLSX(data)
	require.NoError(t, err)
	assert.Equal(t, "## Sheet: People\nname: Ana | age: 30\nname: Bo", got)
}

func TestExtractXLSXInvalid(t *testing.T) {
	_, err := ExtractXLSX([]byte("garbage"))
	assert.ErrorIs(t, err, models.ErrExtraction)
}

func TestExtractMarkdown(t *testing.T) {
	in := "# Pricing\n\nPlans start at **$10** per [seat](https://example.com).\n\n- monthly\n- yearly\n\n```\ncurl api\n```\n"

	got, err := ExtractMarkdown([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, "Pricing\nPlans start at $10 per seat.\nmonthly\nyearly\ncurl api", got)
}
