package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog/log"

	"knowledge-ingest/internal/chromemdb"
	"knowledge-ingest/internal/config"
	"knowledge-ingest/internal/db"
	"knowledge-ingest/internal/embedding"
	"knowledge-ingest/internal/extractor"
	"knowledge-ingest/internal/helper"
	"knowledge-ingest/internal/ingest"
	"knowledge-ingest/internal/models"
)

const (
	defaultConfigPath = "./configs/config.yaml"

	modeExtract = "extract"
	modeEmbed   = "embed"
	modeIngest  = "ingest"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to the yaml config")
	files := flag.String("file", "", "Comma separated list of documents")
	formatTag := flag.String("format", "", "Force the document format (pdf, csv, docx, xlsx, md, txt)")
	mode := flag.String("mode", modeIngest, "extract | embed | ingest")
	dryRun := flag.Bool("dry-run", false, "Embed but do not store")
	reset := flag.Bool("reset", false, "Drop stored documents before ingesting")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		helper.SetupLogger(os.Stderr, "info")
		log.Fatal().Err(err).Msg("Error loading config")
	}
	helper.SetupLogger(os.Stderr, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	paths := splitList(*files)
	if len(paths) == 0 {
		log.Fatal().Msg("Please provide at least one document using the -file flag")
	}

	var override models.Format
	if *formatTag != "" {
		override, err = models.ParseFormat(*formatTag)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -format")
		}
	}

	docs, err := ingest.LoadFiles(paths, override)
	if err != nil {
		log.Fatal().Err(err).Msg("Error reading documents")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch *mode {
	case modeExtract:
		extractDocuments(docs)
	case modeEmbed:
		embedDocuments(ctx, cfg, docs)
	case modeIngest:
		ingestDocuments(ctx, cfg, docs, *dryRun, *reset)
	default:
		log.Fatal().Str("mode", *mode).Msg("Unknown mode")
	}
}

func extractDocuments(docs []models.RawDocument) {
	for _, doc := range docs {
		text, err := extractor.Extract(doc)
		if err != nil {
			log.Error().Err(err).Str("document", doc.Name).Msg("Error extracting document")
			continue
		}
		log.Info().Str("document", doc.Name).Int("chars", len(text)).Msg("Extracted ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Printf("%s\n\n", text)
	}
}

func newEmbedder(cfg *config.Config) *embedding.Embedder {
	provider, err := embedding.NewProvider(cfg.Embedding)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedding provider")
	}
	embedder, err := embedding.NewEmbedder(provider, cfg.Embedding.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	log.Debug().Str("provider", cfg.Embedding.Provider).Str("base_url", cfg.Embedding.BaseURL).Str("model", cfg.Embedding.Model).Msg("Embedder ready")
	return embedder
}

func embedDocuments(ctx context.Context, cfg *config.Config, docs []models.RawDocument) {
	embedder := newEmbedder(cfg)
	pipeline := ingest.NewPipeline(embedder, nil, ingest.WithConcurrency(cfg.Ingest.Concurrency))
	extracted, failed, err := pipeline.Extract(ctx, docs)
	if err != nil {
		log.Fatal().Err(err).Msg("Error extracting documents")
	}
	for _, f := range failed {
		log.Error().Err(f.Err).Str("document", f.Name).Msg("Skipped document")
	}

	var names, texts []string
	for _, d := range extracted {
		if strings.TrimSpace(d.Text) == "" {
			log.Info().Str("document", d.Name).Msg("No text extracted, skipping")
			continue
		}
		names = append(names, d.Name)
		texts = append(texts, d.Text)
	}

	vectors, err := embedder.EmbedTexts(ctx, cfg.Embedding.APIKey, texts)
	if err != nil {
		fatalEmbedding(err)
	}

	summary := make([]map[string]interface{}, len(vectors))
	for i, v := range vectors {
		summary[i] = map[string]interface{}{
			"document":   names[i],
			"dimensions": len(v),
			"head":       v[:min(len(v), 4)],
		}
	}
	helper.PrettyPrint(os.Stdout, summary)
}

func ingestDocuments(ctx context.Context, cfg *config.Config, docs []models.RawDocument, dryRun, reset bool) {
	var sink ingest.Sink
	if !dryRun {
		s, closeSink := openSink(ctx, cfg, reset)
		defer closeSink()
		sink = s
	}

	pipeline := ingest.NewPipeline(newEmbedder(cfg), sink, ingest.WithConcurrency(cfg.Ingest.Concurrency))
	report, err := pipeline.Run(ctx, cfg.Embedding.APIKey, docs)
	if err != nil {
		fatalEmbedding(err)
	}

	for _, f := range report.Failed {
		log.Error().Err(f.Err).Str("document", f.Name).Msg("Could not process this document")
	}
	log.Info().
		Int("extracted", report.Extracted).
		Int("embedded", report.Embedded).
		Int("empty", len(report.Empty)).
		Int("failed", len(report.Failed)).
		Msg("Ingestion finished")
}

// openSink returns the configured sink and a func releasing it
func openSink(ctx context.Context, cfg *config.Config, reset bool) (ingest.Sink, func()) {
	switch cfg.Store.Kind {
	case config.StoreChromem:
		m, err := chromemdb.NewVectorDBManager(cfg.Store.Path, cfg.Store.Collection, cfg.Store.InMemory, cfg.Store.Compress, cfg.Store.EncryptionKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Error creating vector database manager")
		}
		if reset {
			if err := m.DeleteCollection(); err != nil {
				log.Fatal().Err(err).Msg("Error dropping collection")
			}
			if _, err := m.GetOrCreateCollection(cfg.Store.Collection); err != nil {
				log.Fatal().Err(err).Msg("Error recreating collection")
			}
		}
		return m, func() {
			if cfg.Store.EncryptionKey == "" {
				return
			}
			if err := m.Export(); err != nil {
				log.Error().Err(err).Msg("Error exporting collection")
			}
		}
	case config.StorePostgres:
		sqldb, err := db.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		bunDB := db.NewDB(sqldb, cfg.Database.Debug)
		if reset {
			if err := db.DropDocuments(ctx, bunDB); err != nil {
				bunDB.Close()
				log.Fatal().Err(err).Msg("Error dropping documents table")
			}
		}
		if err := db.InitDB(ctx, bunDB); err != nil {
			bunDB.Close()
			log.Fatal().Err(err).Msg("Error initializing database")
		}
		store := db.NewStore(bunDB, cfg.Database.VectorSize)
		return store, func() { store.Close() }
	default:
		return nil, func() {}
	}
}

func fatalEmbedding(err error) {
	switch {
	case errors.Is(err, models.ErrConfiguration):
		log.Fatal().Err(err).Msg("Embedding is not configured, set EMBEDDING_API_KEY or embedding.api_key")
	case errors.Is(err, models.ErrEmbeddingProvider):
		log.Fatal().Err(err).Msg("Embedding provider failed")
	default:
		log.Fatal().Err(err).Msg("Error generating embeddings")
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
