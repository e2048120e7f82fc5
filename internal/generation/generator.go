// Package generation builds the configured text generator.
package generation

import (
	"fmt"

	"appsearch/internal/config"
	"appsearch/internal/domain"
	"appsearch/internal/generation/file"
	"appsearch/internal/generation/openai"
)

// New builds the text generator selected by cfg.
func New(cfg config.GeneratorConfig) (domain.TextGenerator, error) {
	switch cfg.Type {
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("generator: missing openai settings")
		}
		key, err := cfg.OpenAI.APIKey()
		if err != nil {
			return nil, err
		}
		g, err := openai.NewGenerator(openai.Options{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  key,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.OpenAI.Timeout(),
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	case "file":
		if cfg.File == nil || cfg.File.Path == "" {
			return nil, fmt.Errorf("generator: missing file path")
		}
		return file.NewGenerator(cfg.File.Path), nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}
