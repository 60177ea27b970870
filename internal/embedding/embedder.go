package embedding

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"knowledge-ingest/internal/models"
)

// Embedder turns ordered texts into vectors with one provider call per batch.
// It keeps no state between calls and is safe for concurrent use.
type Embedder struct {
	provider Provider
	model    string
}

// NewEmbedder binds a provider to the model used for every request
func NewEmbedder(provider Provider, model string) (*Embedder, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: embedding provider is required", models.ErrConfiguration)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: embedding model is required", models.ErrConfiguration)
	}
	return &Embedder{provider: provider, model: model}, nil
}

// Model returns the fixed model identifier
func (e *Embedder) Model() string { return e.model }

// EmbedTexts returns one vector per text where result[i] is the embedding of texts[i].
//
// A blank credential fails with models.ErrConfiguration and an empty batch returns
// an empty result, both without contacting the provider. Provider failures and
// responses that do not map one to one onto the input fail the whole batch with
// models.ErrEmbeddingProvider.
func (e *Embedder) EmbedTexts(ctx context.Context, credential string, texts []string) ([][]float32, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, fmt.Errorf("%w: embedding api credential is required", models.ErrConfiguration)
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	log.Debug().Int("count", len(texts)).Str("model", e.model).Msg("Generating embeddings")

	items, err := e.provider.CreateEmbeddings(ctx, Request{
		Credential: credential,
		Model:      e.model,
		Input:      texts,
	})
	if err != nil {
		log.Error().Err(err).Int("count", len(texts)).Msg("Embedding request failed")
		if errors.Is(err, models.ErrEmbeddingProvider) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrEmbeddingProvider, err)
	}

	return orderByIndex(items, len(texts))
}

// orderByIndex sorts items by their reported index and checks that they cover
// exactly the positions 0..n-1 with non-empty vectors of one dimensionality
func orderByIndex(items []Item, n int) ([][]float32, error) {
	if len(items) != n {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", models.ErrEmbeddingProvider, len(items), n)
	}

	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b Item) int {
		return cmp.Compare(a.Index, b.Index)
	})

	vectors := make([][]float32, n)
	dim := len(sorted[0].Embedding)
	for i, item := range sorted {
		if item.Index != i {
			return nil, fmt.Errorf("%w: missing or duplicate embedding index %d", models.ErrEmbeddingProvider, i)
		}
		if len(item.Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding at index %d", models.ErrEmbeddingProvider, i)
		}
		if len(item.Embedding) != dim {
			return nil, fmt.Errorf("%w: embedding at index %d has dimension %d, want %d", models.ErrEmbeddingProvider, i, len(item.Embedding), dim)
		}
		vectors[i] = item.Embedding
	}
	return vectors, nil
}
