package chromemdb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"knowledge-ingest/internal/helper"
	"knowledge-ingest/internal/models"
)

// metadata keys stored next to every vector
const (
	MetaSource = "source"
	MetaFormat = "format"
	MetaChars  = "chars"
)

// VectorDBManager encapsulates the chromem-go database operations
type VectorDBManager struct {
	db            *chromem.DB
	collection    *chromem.Collection
	dbPath        string
	compress      bool
	encryptionKey string
	filePath      string
}

// NewVectorDBManager opens a persistent db under dbPath, or an in-memory one
func NewVectorDBManager(dbPath, collectionName string, inMemory, compress bool, encryptionKey string) (*VectorDBManager, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		if err := helper.CreateFolder(dbPath); err != nil {
			return nil, err
		}
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	m := &VectorDBManager{
		db:            db,
		dbPath:        dbPath,
		compress:      compress,
		encryptionKey: encryptionKey,
		filePath:      filepath.Join(dbPath, collectionName+".chromem"),
	}
	if _, err := m.GetOrCreateCollection(collectionName); err != nil {
		return nil, err
	}
	return m, nil
}

// create or read collection
func (m *VectorDBManager) GetOrCreateCollection(collectionName string) (*chromem.Collection, error) {
	// vectors always arrive precomputed, so no embedding func is configured
	c, err := m.db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}
	m.collection = c
	return c, nil
}

// Store adds embedded documents to the collection under fresh ids
func (m *VectorDBManager) Store(ctx context.Context, docs []models.EmbeddedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	chromemDocs := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		id, err := helper.GenerateUUID()
		if err != nil {
			return err
		}
		chromemDocs = append(chromemDocs, chromem.Document{
			ID:        id,
			Content:   d.Content,
			Metadata:  CreateMetadata(d),
			Embedding: d.Embedding,
		})
	}

	log.Info().Int("count", len(chromemDocs)).Str("collection", m.collection.Name).Msg("Adding documents to vector database")
	if err := m.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Count returns the number of documents in the collection
func (m *VectorDBManager) Count() int {
	return m.collection.Count()
}

// delete collection
func (m *VectorDBManager) DeleteCollection() error {
	err := m.db.DeleteCollection(m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	return nil
}

// export to an encrypted file next to the db
func (m *VectorDBManager) Export() error {
	if m.encryptionKey == "" {
		return fmt.Errorf("encryption key is required")
	}
	if m.dbPath == "" {
		return fmt.Errorf("db path is required")
	}

	log.Debug().Str("collection", m.collection.Name).Str("file", m.filePath).Bool("compress", m.compress).Msg("Exporting collection")
	err := m.db.ExportToFile(m.filePath, m.compress, m.encryptionKey, m.collection.Name)
	if err != nil {
		return fmt.Errorf("failed to export database: %v", err)
	}
	return nil
}

// CreateMetadata builds the chromem metadata of an embedded document
func CreateMetadata(d models.EmbeddedDocument) map[string]string {
	return map[string]string{
		MetaSource: d.Name,
		MetaFormat: string(d.Format),
		MetaChars:  strconv.Itoa(len(d.Content)),
	}
}
