package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"knowledge-ingest/internal/config"
	"knowledge-ingest/internal/models"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`
	ID            int64           `bun:"id,pk,autoincrement"`
	Source        string          `bun:"source,notnull"`
	Format        string          `bun:"format,notnull"`
	Content       string          `bun:"content,notnull"`
	Embedding     pgvector.Vector `bun:"embedding,notnull,type:vector"`
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ConnectDB opens the connection with the configured driver, pgdriver unless "pq" is asked for
func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case config.DriverPQ:
		return sql.Open("postgres", cfg.DSN)
	case config.DriverPgdriver, "":
		opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
		if cfg.Password != "" {
			opts = append(opts, pgdriver.WithPassword(cfg.Password))
		}
		return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
	default:
		return nil, fmt.Errorf("%w: unknown database driver %q", models.ErrConfiguration, cfg.Driver)
	}
}

func InitDB(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return err
	}
	_, err := db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Store implements the ingest sink on top of bun
type Store struct {
	db         *bun.DB
	vectorSize int
}

// NewStore wraps an open db. vectorSize 0 accepts any dimension.
func NewStore(db *bun.DB, vectorSize int) *Store {
	return &Store{db: db, vectorSize: vectorSize}
}

func (s *Store) Store(ctx context.Context, docs []models.EmbeddedDocument) error {
	rows, err := ToRows(docs, s.vectorSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	log.Info().Int("count", len(rows)).Msg("Inserting documents")
	_, err = s.db.NewInsert().Model(&rows).Exec(ctx)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ToRows maps embedded documents to table rows, rejecting vectors of the wrong size
func ToRows(docs []models.EmbeddedDocument, vectorSize int) ([]Document, error) {
	rows := make([]Document, 0, len(docs))
	for _, d := range docs {
		if vectorSize > 0 && len(d.Embedding) != vectorSize {
			return nil, fmt.Errorf("%w: %s has %d dimensions, table expects %d", models.ErrConfiguration, d.Name, len(d.Embedding), vectorSize)
		}
		rows = append(rows, Document{
			Source:    d.Name,
			Format:    string(d.Format),
			Content:   d.Content,
			Embedding: pgvector.NewVector(d.Embedding),
		})
	}
	return rows, nil
}

// drop table documents
func DropDocuments(ctx context.Context, db *bun.DB) error {
	_, err := db.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx)
	return err
}
