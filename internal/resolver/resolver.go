// Package resolver maps free text to the single closest stored action.
package resolver

import (
	"context"
	"log/slog"
	"strings"

	"appsearch/internal/domain"
)

// Resolver embeds a query and asks the store for its nearest action.
type Resolver struct {
	store    domain.Store
	embedder domain.Embedder
	log      *slog.Logger
}

// New returns a resolver. A nil logger uses slog.Default.
func New(store domain.Store, embedder domain.Embedder, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{store: store, embedder: embedder, log: log}
}

// FindNearest returns the stored action closest to query by cosine distance.
// Only actions embedded by the same model as the resolver's embedder are
// considered. An empty store yields a NO_MATCH error.
func (r *Resolver) FindNearest(ctx context.Context, query string) (domain.Match, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Match{}, domain.Errorf(domain.KindInvalidQuery, "find nearest", "query is empty")
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return domain.Match{}, domain.Wrap(domain.KindEmbedding, "embed query", err)
	}
	if len(vec) != r.embedder.Dimension() {
		return domain.Match{}, domain.Errorf(domain.KindEmbedding, "embed query",
			"got %d dimensions, expected %d", len(vec), r.embedder.Dimension())
	}

	m, err := r.store.Nearest(ctx, vec, r.embedder.Model())
	if err != nil {
		return domain.Match{}, domain.Wrap(domain.KindStore, "find nearest", err)
	}
	r.log.Debug("nearest action", "query", query, "app", m.AppName, "action", m.ActionName, "distance", m.Distance)
	return m, nil
}
