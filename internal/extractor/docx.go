package extractor

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"knowledge-ingest/internal/models"
)

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br[^>]*/>|<w:cr[^>]*/>`)
	docxTab          = regexp.MustCompile(`<w:tab[^>]*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// ExtractDOCX returns the paragraph text of a Word document, one paragraph per line
func ExtractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", extractionError(models.FormatDOCX, err)
	}
	defer r.Close()

	return sanitize(docxText(r.Editable().GetContent())), nil
}

// docxText strips WordprocessingML markup from document.xml
func docxText(content string) string {
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTab.ReplaceAllString(content, "\t")
	content = xmlTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
