package embedding

import (
	"context"
	"fmt"

	"knowledge-ingest/internal/config"
	"knowledge-ingest/internal/models"
)

// Request is one batched call to an embedding provider
type Request struct {
	Credential string
	Model      string
	Input      []string
}

// Item is a single vector as reported by the provider, tagged with the
// position of its text in Request.Input. Providers may return items in any order.
type Item struct {
	Index     int
	Embedding []float32
}

// Provider submits ordered texts and returns index-tagged vectors
type Provider interface {
	CreateEmbeddings(ctx context.Context, req Request) ([]Item, error)
}

// NewProvider builds the provider selected in the config
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAIProvider(cfg.BaseURL, cfg.Timeout), nil
	case config.ProviderOllama:
		return NewOllamaProvider(cfg.BaseURL, cfg.Timeout), nil
	case config.ProviderLangchainOpenAI:
		return NewLangchainOpenAIProvider(cfg.BaseURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", models.ErrConfiguration, cfg.Provider)
	}
}
