package cli

import (
	"context"
	"io"
	"log/slog"

	"appsearch/internal/catalog"
	"appsearch/internal/config"
	"appsearch/internal/domain"
	"appsearch/internal/embedding"
	"appsearch/internal/generation"
	"appsearch/internal/resolver"
	"appsearch/internal/seeder"
	"appsearch/internal/service"
	"appsearch/internal/vectorstore"
)

// setupLogging installs a text slog handler on w, at debug level when verbose.
func setupLogging(opts *RootOptions, w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
	return log
}

func loadConfig(opts *RootOptions) (*config.AppConfig, error) {
	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		return cfg, nil
	}
	cfg, _, err := config.LoadDefault()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// serviceOptions tweaks how buildService assembles components.
type serviceOptions struct {
	withGenerator bool
	delayer       seeder.Delayer
}

// buildService assembles the catalog service from cfg. The generator is only
// built when seeding, so lookups need no chat credentials.
func buildService(ctx context.Context, cfg *config.AppConfig, log *slog.Logger, so serviceOptions) (*service.CatalogService, error) {
	embedder, err := embedding.New(cfg.Embedder)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure embedder", err)
	}

	var source service.CatalogSource
	if so.withGenerator {
		text, err := generation.New(cfg.Generator)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to configure generator", err)
		}
		source = catalog.NewGenerator(text, cfg.Generator.MinApps, cfg.Generator.MinActions)
	}

	log.Debug("opening store", "type", cfg.Store.Type, "dimension", embedder.Dimension())
	store, err := vectorstore.Open(ctx, cfg.Store, embedder.Dimension())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", domain.Wrap(domain.KindStore, "open store", err))
	}

	delayer := so.delayer
	if delayer == nil {
		delayer = seeder.NewRandomDelay(cfg.Seeder.MinDelay(), cfg.Seeder.MaxDelay())
	}
	pipeline := seeder.NewPipeline(store, embedder, seeder.WithDelayer(delayer), seeder.WithLogger(log))
	finder := resolver.New(store, embedder, log)

	return service.NewCatalogService(source, pipeline, finder, store, log), nil
}

func closeService(svc *service.CatalogService) {
	if err := svc.Close(); err != nil {
		slog.Error("error closing store", "error", err)
	}
}
