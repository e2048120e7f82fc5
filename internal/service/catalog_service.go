package service

import (
	"context"
	"log/slog"

	"appsearch/internal/domain"
	"appsearch/internal/seeder"
)

// CatalogSource produces the apps to seed.
type CatalogSource interface {
	Generate(ctx context.Context) ([]domain.App, error)
}

// Seeder writes apps into the store.
type Seeder interface {
	SeedWithReport(ctx context.Context, apps []domain.App) (seeder.Report, error)
}

// NearestFinder resolves a query to one stored action.
type NearestFinder interface {
	FindNearest(ctx context.Context, query string) (domain.Match, error)
}

// CatalogService ties catalog generation, seeding and lookup together.
type CatalogService struct {
	source CatalogSource
	seeder Seeder
	finder NearestFinder
	store  domain.Store
	log    *slog.Logger
}

func NewCatalogService(source CatalogSource, seeder Seeder, finder NearestFinder, store domain.Store, log *slog.Logger) *CatalogService {
	if log == nil {
		log = slog.Default()
	}
	return &CatalogService{source: source, seeder: seeder, finder: finder, store: store, log: log}
}

// Seed generates a catalog and stores it. A generation or parse failure
// returns before anything is written.
func (s *CatalogService) Seed(ctx context.Context) (seeder.Report, error) {
	apps, err := s.source.Generate(ctx)
	if err != nil {
		return seeder.Report{}, err
	}
	actions := 0
	for _, a := range apps {
		actions += len(a.Actions)
	}
	s.log.Info("generated catalog", "apps", len(apps), "actions", actions)
	return s.seeder.SeedWithReport(ctx, apps)
}

// Find returns the stored action closest to query.
func (s *CatalogService) Find(ctx context.Context, query string) (domain.Match, error) {
	return s.finder.FindNearest(ctx, query)
}

// CountActions reports how many actions are stored.
func (s *CatalogService) CountActions(ctx context.Context) (int, error) {
	n, err := s.store.CountActions(ctx)
	if err != nil {
		return 0, domain.Wrap(domain.KindStore, "count actions", err)
	}
	return n, nil
}

// Close releases the store.
func (s *CatalogService) Close() error {
	return s.store.Close()
}
