// Package seeder writes a generated catalog into the store: every app first,
// then each of its actions with an embedding of its text.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"appsearch/internal/domain"
)

// Report counts the rows a seed run committed.
type Report struct {
	Apps    int `json:"apps"`
	Actions int `json:"actions"`
}

// Pipeline inserts apps and their embedded actions concurrently.
type Pipeline struct {
	store    domain.Store
	embedder domain.Embedder
	delay    Delayer
	log      *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithDelayer replaces the default jitter source.
func WithDelayer(d Delayer) Option {
	return func(p *Pipeline) { p.delay = d }
}

// WithLogger sets the logger used for progress lines.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

// NewPipeline wires a pipeline. The default delayer waits 300ms to 1s before each insert.
func NewPipeline(store domain.Store, embedder domain.Embedder, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:    store,
		embedder: embedder,
		delay:    NewRandomDelay(DefaultMinDelay, DefaultMaxDelay),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// EmbeddingText is the exact text embedded for an action.
func EmbeddingText(app domain.App, action domain.Action) string {
	return fmt.Sprintf("App: %s.\nApp description: %s.\n\nAction: %s.\nAction description: %s.",
		app.Name, app.Description, action.Name, action.Description)
}

// Seed stores every app and action. See SeedWithReport.
func (p *Pipeline) Seed(ctx context.Context, apps []domain.App) error {
	_, err := p.SeedWithReport(ctx, apps)
	return err
}

// seedRun holds the state shared by every task of one seed call.
type seedRun struct {
	g       errgroup.Group
	failed  chan error // holds the first error only
	apps    atomic.Int64
	actions atomic.Int64
	log     *slog.Logger
}

func (r *seedRun) fail(err error) error {
	select {
	case r.failed <- err:
	default:
	}
	return err
}

func (r *seedRun) report() Report {
	return Report{Apps: int(r.apps.Load()), Actions: int(r.actions.Load())}
}

// SeedWithReport stores every app and action and returns how many rows were
// committed. It returns as soon as any task fails; tasks already running are
// not cancelled and finish on their own. Committed rows are kept.
func (p *Pipeline) SeedWithReport(ctx context.Context, apps []domain.App) (Report, error) {
	r := &seedRun{failed: make(chan error, 1), log: p.log.With("run_id", uuid.NewString())}
	r.log.Info("seeding catalog", "apps", len(apps))

	// a plain Group: the first error must not cancel siblings
	for _, app := range apps {
		r.g.Go(func() error {
			return p.seedApp(ctx, r, app)
		})
	}
	done := make(chan struct{})
	go func() {
		_ = r.g.Wait()
		close(done)
	}()

	var err error
	select {
	case err = <-r.failed:
	case <-done:
		select {
		case err = <-r.failed:
		default:
		}
	}

	report := r.report()
	if err != nil {
		r.log.Error("seeding failed", "apps", report.Apps, "actions", report.Actions, "error", err)
		return report, err
	}
	r.log.Info("seeding finished", "apps", report.Apps, "actions", report.Actions)
	return report, nil
}

func (p *Pipeline) seedApp(ctx context.Context, r *seedRun, app domain.App) error {
	d := p.delay.Delay()
	r.log.Info("inserting app", "app", app.Name, "delay", d)
	if err := sleep(ctx, d); err != nil {
		return r.fail(err)
	}
	appID, err := p.store.InsertApp(ctx, app.Name, app.Description)
	if err != nil {
		return r.fail(domain.Wrap(domain.KindStore, "insert app "+app.Name, err))
	}
	r.apps.Add(1)
	r.log.Info("inserted app", "app", app.Name, "app_id", appID, "delay", d)

	// the running task keeps the group counter above zero, so Go is safe here
	for _, action := range app.Actions {
		r.g.Go(func() error {
			return p.seedAction(ctx, r, app, appID, action)
		})
	}
	return nil
}

func (p *Pipeline) seedAction(ctx context.Context, r *seedRun, app domain.App, appID int64, action domain.Action) error {
	op := "insert action " + app.Name + "/" + action.Name
	d := p.delay.Delay()
	r.log.Info("inserting action", "app", app.Name, "action", action.Name, "delay", d)
	if err := sleep(ctx, d); err != nil {
		return r.fail(err)
	}

	vec, err := p.embedder.Embed(ctx, EmbeddingText(app, action))
	if err != nil {
		return r.fail(domain.Wrap(domain.KindEmbedding, "embed action "+app.Name+"/"+action.Name, err))
	}
	if len(vec) != p.embedder.Dimension() {
		return r.fail(domain.Errorf(domain.KindEmbedding, "embed action "+app.Name+"/"+action.Name,
			"got %d dimensions, expected %d", len(vec), p.embedder.Dimension()))
	}

	actionID, err := p.store.InsertAction(ctx, domain.ActionRecord{
		AppID:       appID,
		Name:        action.Name,
		Description: action.Description,
		Embedding:   vec,
		Model:       p.embedder.Model(),
	})
	if err != nil {
		return r.fail(domain.Wrap(domain.KindStore, op, err))
	}
	r.actions.Add(1)
	r.log.Info("inserted action", "app", app.Name, "action", action.Name, "action_id", actionID, "delay", d)
	return nil
}
