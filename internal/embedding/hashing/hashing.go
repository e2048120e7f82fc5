// Package hashing implements an offline, deterministic embedder based on
// feature hashing of word tokens. Vectors have a fixed dimension regardless of
// the corpus, so seeding and querying agree without any preparation phase.
package hashing

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Embedder hashes lowercase word tokens into a fixed number of buckets and
// L2-normalizes the resulting term-frequency vector.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a hashing embedder producing vectors of the given dimension.
func NewEmbedder(dimension int) (*Embedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("hashing: invalid dimension %d", dimension)
	}
	return &Embedder{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}, nil
}

// Model returns the identifier stored next to every vector this embedder produces.
func (e *Embedder) Model() string { return fmt.Sprintf("hashing-%d", e.dimension) }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the hashed embedding for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := e.tokenize(text)
	if len(tokens) == 0 {
		return nil, errors.New("hashing: no tokens in text")
	}
	acc := make([]float64, e.dimension)
	for _, tok := range tokens {
		idx, sign := e.bucket(tok)
		acc[idx] += sign
	}
	norm := 0.0
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		// every token cancelled out; fall back to unsigned counts
		for _, tok := range tokens {
			idx, _ := e.bucket(tok)
			acc[idx]++
		}
		norm = 0
		for _, v := range acc {
			norm += v * v
		}
		norm = math.Sqrt(norm)
	}
	vec := make([]float32, e.dimension)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// bucket maps a token to a vector index and a ±1 sign, which keeps hash
// collisions from always adding up.
func (e *Embedder) bucket(token string) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dimension))
	if (sum>>63)&1 == 1 {
		return idx, -1
	}
	return idx, 1
}

func (e *Embedder) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := e.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		// text made only of stopwords still needs a vector
		return e.tokenPattern.FindAllString(lower, -1)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
