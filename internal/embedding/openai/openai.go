// Package openai provides an embedder backed by an OpenAI-compatible
// embeddings endpoint through langchaingo.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	langchainembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder calls the embeddings endpoint once per text.
type Embedder struct {
	model     string
	dimension int
	embedder  langchainembeddings.Embedder
}

// Options configures the embedder.
type Options struct {
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
	Timeout   time.Duration
}

// NewEmbedder creates an embedder for the configured model.
func NewEmbedder(opts Options) (*Embedder, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai embedder: API key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("openai embedder: model is required")
	}
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("openai embedder: invalid dimension %d", opts.Dimension)
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	llmOpts := []openai.Option{
		openai.WithToken(opts.APIKey),
		openai.WithEmbeddingModel(opts.Model),
		openai.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if opts.BaseURL != "" {
		llmOpts = append(llmOpts, openai.WithBaseURL(opts.BaseURL))
	}
	llm, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	// EmbeddingText relies on its line breaks
	embedder, err := langchainembeddings.NewEmbedder(llm, langchainembeddings.WithStripNewLines(false))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return &Embedder{model: opts.Model, dimension: opts.Dimension, embedder: embedder}, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string { return e.model }

// Dimension returns the expected vector length.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns the embedding vector of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}
	vec := vectors[0]
	if len(vec) != e.dimension {
		return nil, fmt.Errorf("openai embeddings: got %d dimensions, expected %d", len(vec), e.dimension)
	}
	return vec, nil
}
