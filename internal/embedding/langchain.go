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

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"knowledge-ingest/internal/models"
)

// ClientFactory builds a langchaingo embedding client for one request,
// so the credential and model of the request reach the client
type ClientFactory func(req Request) (embeddings.EmbedderClient, error)

// LangchainProvider adapts langchaingo clients. They return vectors positionally,
// so the slice position becomes the item index. Only clients that return vectors
// in input order may be adapted.
type LangchainProvider struct {
	newClient ClientFactory
}

func NewLangchainProvider(factory ClientFactory) *LangchainProvider {
	return &LangchainProvider{newClient: factory}
}

// NewLangchainOpenAIProvider embeds through the langchaingo OpenAI client. The
// client drops the index of every vector, so responses are put back in index
// order before it decodes them.
func NewLangchainOpenAIProvider(baseURL string, timeout time.Duration) *LangchainProvider {
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: indexOrderTransport{next: http.DefaultTransport},
	}
	return NewLangchainProvider(func(req Request) (embeddings.EmbedderClient, error) {
		llm, err := openai.New(
			openai.WithBaseURL(baseURL),
			openai.WithToken(strings.TrimPrefix(req.Credential, "Bearer ")),
			openai.WithEmbeddingModel(req.Model),
			openai.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, err
		}
		return llm, nil
	})
}

func (p *LangchainProvider) CreateEmbeddings(ctx context.Context, req Request) ([]Item, error) {
	client, err := p.newClient(req)
	if err != nil {
		return nil, fmt.Errorf("%w: init client: %v", models.ErrEmbeddingProvider, err)
	}

	vectors, err := client.CreateEmbedding(ctx, req.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrEmbeddingProvider, err)
	}

	items := make([]Item, len(vectors))
	for i, v := range vectors {
		items[i] = Item{Index: i, Embedding: v}
	}
	return items, nil
}

// indexOrderTransport rewrites successful /embeddings responses so that
// data[i] is the item whose index is i
type indexOrderTransport struct {
	next http.RoundTripper
}

func (t indexOrderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	ordered, err := orderResponseData(body)
	if err != nil {
		return nil, err
	}

	resp.Body = io.NopCloser(bytes.NewReader(ordered))
	resp.ContentLength = int64(len(ordered))
	resp.Header.Del("Content-Length")
	return resp, nil
}

// orderResponseData places every element of the "data" array at the position
// named by its index. Missing, duplicate or out of range indices are errors.
func orderResponseData(body []byte) ([]byte, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %v", err)
	}
	var data []json.RawMessage
	if raw, ok := payload["data"]; ok {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("decode response data: %v", err)
		}
	}

	ordered := make([]json.RawMessage, len(data))
	for i, raw := range data {
		var item struct {
			Index *int `json:"index"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode response item %d: %v", i, err)
		}
		if item.Index == nil {
			return nil, fmt.Errorf("response item %d has no index", i)
		}
		idx := *item.Index
		if idx < 0 || idx >= len(data) || ordered[idx] != nil {
			return nil, fmt.Errorf("response item %d has invalid or duplicate index %d", i, idx)
		}
		ordered[idx] = raw
	}

	out, err := json.Marshal(ordered)
	if err != nil {
		return nil, err
	}
	payload["data"] = out
	return json.Marshal(payload)
}
