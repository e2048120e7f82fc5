package embedding

import (
	"fmt"

	"appsearch/internal/config"
	"appsearch/internal/domain"
	"appsearch/internal/embedding/hashing"
	"appsearch/internal/embedding/openai"
)

// New builds the embedder selected by cfg.
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("embedder: missing openai settings")
		}
		key, err := cfg.OpenAI.APIKey()
		if err != nil {
			return nil, err
		}
		e, err := openai.NewEmbedder(openai.Options{
			BaseURL:   cfg.OpenAI.BaseURL,
			APIKey:    key,
			Model:     cfg.OpenAI.Model,
			Dimension: cfg.Dimension,
			Timeout:   cfg.OpenAI.Timeout(),
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case "hashing":
		e, err := hashing.NewEmbedder(cfg.Dimension)
		if err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}
