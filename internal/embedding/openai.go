package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"knowledge-ingest/internal/models"
)

const maxErrorBody = 512

// OpenAIProvider talks to an OpenAI-compatible /embeddings endpoint and keeps
// the index the server reports for every vector
type OpenAIProvider struct {
	baseURL string
	client  *http.Client
}

func NewOpenAIProvider(baseURL string, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = models.DefaultEmbeddingBase
	}
	return &OpenAIProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// NewOllamaProvider embeds through the OpenAI compatible endpoint of an Ollama
// server, which takes the whole batch in one request. Ollama ignores the credential.
func NewOllamaProvider(serverURL string, timeout time.Duration) *OpenAIProvider {
	if serverURL == "" {
		serverURL = models.DefaultOllamaBase
	}
	serverURL = strings.TrimSuffix(serverURL, "/")
	if !strings.HasSuffix(serverURL, "/v1") {
		serverURL += "/v1"
	}
	return NewOpenAIProvider(serverURL, timeout)
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     *int      `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAIProvider) CreateEmbeddings(ctx context.Context, req Request) ([]Item, error) {
	jsonData, err := json.Marshal(embeddingRequest{Model: req.Model, Input: req.Input})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", models.ErrEmbeddingProvider, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrEmbeddingProvider, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimPrefix(req.Credential, "Bearer "))

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrEmbeddingProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: request failed: %d, %s", models.ErrEmbeddingProvider, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrEmbeddingProvider, err)
	}

	items := make([]Item, 0, len(out.Data))
	for i, d := range out.Data {
		if d.Index == nil {
			return nil, fmt.Errorf("%w: response item %d has no index", models.ErrEmbeddingProvider, i)
		}
		items = append(items, Item{Index: *d.Index, Embedding: d.Embedding})
	}
	return items, nil
}
