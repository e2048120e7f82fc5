// Package openai provides a text generator backed by an OpenAI-compatible
// chat completions endpoint through langchaingo.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Options configures the generator.
type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Generator sends a prompt as a single system message and returns the first choice.
type Generator struct {
	client llms.Model
}

// NewGenerator creates a chat generator for the configured model.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("openai generator: API key is required")
	}
	if opts.Model == "" {
		return nil, fmt.Errorf("openai generator: model is required")
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	llmOpts := []openai.Option{
		openai.WithToken(opts.APIKey),
		openai.WithModel(opts.Model),
		openai.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if opts.BaseURL != "" {
		llmOpts = append(llmOpts, openai.WithBaseURL(opts.BaseURL))
	}
	llm, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return &Generator{client: llm}, nil
}

// Generate returns the text of the first completion choice.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, prompt),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: no choices in response")
	}
	content := resp.Choices[0].Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("openai chat: empty content")
	}
	return content, nil
}
