package chromemdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-ingest/internal/models"
)

func sampleDocs() []models.EmbeddedDocument {
	return []models.EmbeddedDocument{
		{Name: "people.csv", Format: models.FormatCSV, Content: "name: Ana | age: 30", Embedding: []float32{0.6, 0.8}},
		{Name: "guide.pdf", Format: models.FormatPDF, Content: "Welcome", Embedding: []float32{1, 0}},
	}
}

func TestStoreInMemory(t *testing.T) {
	m, err := NewVectorDBManager("", "knowledge", true, false, "")
	require.NoError(t, err)

	require.NoError(t, m.Store(context.Background(), sampleDocs()))
	assert.Equal(t, 2, m.Count())

	require.NoError(t, m.Store(context.Background(), nil))
	assert.Equal(t, 2, m.Count())
}

func TestStorePersistentAndExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	key := "0123456789abcdef0123456789abcdef"

	m, err := NewVectorDBManager(dir, "knowledge", false, false, key)
	require.NoError(t, err)
	require.NoError(t, m.Store(context.Background(), sampleDocs()))
	require.NoError(t, m.Export())

	_, err = os.Stat(filepath.Join(dir, "knowledge.chromem"))
	assert.NoError(t, err)

	reopened, err := NewVectorDBManager(dir, "knowledge", false, false, key)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Count())
}

func TestExportRequiresKey(t *testing.T) {
	m, err := NewVectorDBManager(t.TempDir(), "knowledge", false, false, "")
	require.NoError(t, err)
	assert.Error(t, m.Export())
}

func TestDeleteCollection(t *testing.T) {
	m, err := NewVectorDBManager("", "knowledge", true, false, "")
	require.NoError(t, err)
	require.NoError(t, m.Store(context.Background(), sampleDocs()))
	assert.NoError(t, m.DeleteCollection())
}

func TestCreateMetadata(t *testing.T) {
	md := CreateMetadata(sampleDocs()[0])
	assert.Equal(t, map[string]string{
		MetaSource: "people.csv",
		MetaFormat: "csv",
		MetaChars:  "19",
	}, md)
}
