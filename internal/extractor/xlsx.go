package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"knowledge-ingest/internal/models"
)

// ExtractXLSX renders every sheet the way ExtractCSV renders a file: the first row
// names the columns and each following row becomes "col: value | ..." under a
// "## Sheet: <name>" line. Sheets without any rendered row are left out.
func ExtractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", extractionError(models.FormatXLSX, err)
	}
	defer f.Close()

	var sections []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", extractionError(models.FormatXLSX, fmt.Errorf("sheet %s: %v", sheet, err))
		}
		if len(rows) < 2 {
			continue
		}

		header := rows[0]
		var lines []string
		for _, row := range rows[1:] {
			if line := renderRow(header, row); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		sections = append(sections, fmt.Sprintf(models.SheetHeaderFormat, sheet)+models.RowSeparator+strings.Join(lines, models.RowSeparator))
	}
	return sanitize(strings.Join(sections, models.RowSeparator)), nil
}
