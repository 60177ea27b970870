// Package ingest wires extraction, embedding and storage together the way the
// knowledge upload handler does: extraction failures are reported per document,
// embedding happens in a single batch, and the batch either fully succeeds or fails.
package ingest

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"knowledge-ingest/internal/extractor"
	"knowledge-ingest/internal/models"
)

const defaultConcurrency = 4

// ExtractFunc turns one raw document into text
type ExtractFunc func(doc models.RawDocument) (string, error)

// TextEmbedder is the embedding capability the pipeline needs
type TextEmbedder interface {
	EmbedTexts(ctx context.Context, credential string, texts []string) ([][]float32, error)
}

// Sink receives the embedded documents of a run
type Sink interface {
	Store(ctx context.Context, docs []models.EmbeddedDocument) error
}

// Failure records a document that could not be extracted
type Failure struct {
	Name string
	Err  error
}

type Report struct {
	Extracted int
	Embedded  int
	Empty     []string
	Failed    []Failure
}

type Pipeline struct {
	extract     ExtractFunc
	embedder    TextEmbedder
	sink        Sink
	concurrency int
}

type Option func(*Pipeline)

func WithExtractFunc(fn ExtractFunc) Option {
	return func(p *Pipeline) { p.extract = fn }
}

func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewPipeline builds a pipeline. A nil sink drops the vectors after embedding.
func NewPipeline(embedder TextEmbedder, sink Sink, opts ...Option) *Pipeline {
	p := &Pipeline{
		extract:     extractor.Extract,
		embedder:    embedder,
		sink:        sink,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract runs extraction over docs with bounded concurrency. Results keep the
// order of docs; documents that fail are left out and reported.
func (p *Pipeline) Extract(ctx context.Context, docs []models.RawDocument) ([]models.ExtractedDocument, []Failure, error) {
	texts := make([]string, len(docs))
	errs := make([]error, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts[i], errs[i] = p.extract(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var extracted []models.ExtractedDocument
	var failed []Failure
	for i, doc := range docs {
		if errs[i] != nil {
			log.Warn().Err(errs[i]).Str("document", doc.Name).Msg("Could not extract document")
			failed = append(failed, Failure{Name: doc.Name, Err: errs[i]})
			continue
		}
		extracted = append(extracted, models.ExtractedDocument{Name: doc.Name, Format: doc.Format, Text: texts[i]})
	}
	return extracted, failed, nil
}

// Run extracts docs, embeds every non-empty text in one batch and stores the result.
// Configuration and provider errors abort the run; extraction errors do not.
func (p *Pipeline) Run(ctx context.Context, credential string, docs []models.RawDocument) (*Report, error) {
	extracted, failed, err := p.Extract(ctx, docs)
	if err != nil {
		return nil, err
	}

	report := &Report{Extracted: len(extracted), Failed: failed}

	var batch []models.ExtractedDocument
	for _, d := range extracted {
		if strings.TrimSpace(d.Text) == "" {
			log.Info().Str("document", d.Name).Msg("No text extracted, skipping")
			report.Empty = append(report.Empty, d.Name)
			continue
		}
		batch = append(batch, d)
	}

	texts := make([]string, len(batch))
	for i, d := range batch {
		texts[i] = d.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, credential, texts)
	if err != nil {
		return report, err
	}

	embedded := make([]models.EmbeddedDocument, len(batch))
	for i, d := range batch {
		embedded[i] = models.EmbeddedDocument{
			Name:      d.Name,
			Format:    d.Format,
			Content:   d.Text,
			Embedding: vectors[i],
		}
	}
	report.Embedded = len(embedded)

	if p.sink == nil || len(embedded) == 0 {
		log.Info().Int("embedded", len(embedded)).Msg("Nothing stored")
		return report, nil
	}
	if err := p.sink.Store(ctx, embedded); err != nil {
		return report, err
	}
	return report, nil
}
