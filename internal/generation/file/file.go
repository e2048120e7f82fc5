// Package file serves a catalog from disk in place of a model call.
package file

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Generator ignores the prompt and returns the file contents.
type Generator struct {
	path string
}

// NewGenerator returns a generator reading path on every call.
func NewGenerator(path string) *Generator {
	return &Generator{path: path}
}

// Generate reads the catalog file.
func (g *Generator) Generate(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(g.path)
	if err != nil {
		return "", fmt.Errorf("read catalog file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("catalog file %s is empty", g.path)
	}
	return string(data), nil
}
