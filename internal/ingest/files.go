package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"knowledge-ingest/internal/models"
)

// LoadFiles reads every path into a RawDocument. The format comes from the
// file extension unless override is set.
func LoadFiles(paths []string, override models.Format) ([]models.RawDocument, error) {
	docs := make([]models.RawDocument, 0, len(paths))
	for _, path := range paths {
		format := override
		if format == "" {
			f, err := models.FormatFromFilename(path)
			if err != nil {
				return nil, err
			}
			format = f
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %v", path, err)
		}
		docs = append(docs, models.RawDocument{
			Name:   filepath.Base(path),
			Format: format,
			Data:   data,
		})
	}
	return docs, nil
}
