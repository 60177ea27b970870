package extractor

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"knowledge-ingest/internal/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ExtractCSV flattens delimited data with a header row into one line per row:
//
//	name: Ana | age: 30
//
// Empty cells are omitted and rows without any non-empty cell are dropped.
// Malformed records are skipped, so this never fails on content.
func ExtractCSV(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	var header []string
	var lines []string
	skipped := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			// a reader over a byte slice only fails on parse errors
			break
		}

		if header == nil {
			header = make([]string, len(record))
			copy(header, record)
			continue
		}

		if line := renderRow(header, record); line != "" {
			lines = append(lines, line)
		}
	}

	if skipped > 0 {
		log.Debug().Int("skipped", skipped).Msg("Skipped malformed csv records")
	}
	return sanitize(strings.Join(lines, models.RowSeparator)), nil
}

// renderRow renders the non-empty cells of a record against the header.
// Cells beyond the header width have no column name and are ignored.
func renderRow(header, record []string) string {
	fields := make([]string, 0, len(header))
	for i, column := range header {
		if i >= len(record) {
			break
		}
		value := strings.TrimSpace(record[i])
		if value == "" {
			continue
		}
		fields = append(fields, fmt.Sprintf(models.KeyValueFormat, column, value))
	}
	return strings.Join(fields, models.FieldSeparator)
}
