package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// EmbeddingProvider turns text into a fixed-length vector. The model may
// fail or block on a cold load; callers are expected to tolerate both.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// GeminiEmbedder is the process-wide embedding client. Constructed once in
// main and injected everywhere a vector is needed.
type GeminiEmbedder struct {
	client   *genai.Client
	model    *genai.EmbeddingModel
	dim      int
	rateChan chan struct{}
}

func NewGeminiEmbedder(apiKey, modelName string, dim, concurrentReqs int) (*GeminiEmbedder, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiEmbedder{
		client:   client,
		model:    client.EmbeddingModel(modelName),
		dim:      dim,
		rateChan: rateChan,
	}, nil
}

func (e *GeminiEmbedder) Close() {
	e.client.Close()
}

func (e *GeminiEmbedder) Dimension() int {
	return e.dim
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer e.releaseRate()

	resp, err := e.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("Gemini embedding error: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("Gemini returned empty embedding")
	}

	// Similarity search is undefined across mismatched dimensions, so a
	// vector of the wrong size never reaches the catalog.
	if len(resp.Embedding.Values) != e.dim {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(resp.Embedding.Values), e.dim)
	}

	return resp.Embedding.Values, nil
}

// acquireRate blocks until a rate slot is available
func (e *GeminiEmbedder) acquireRate(ctx context.Context) error {
	select {
	case <-e.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (e *GeminiEmbedder) releaseRate() {
	e.rateChan <- struct{}{}
}
