package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"appsearch/internal/config"
	"appsearch/internal/seeder"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	CatalogPath string
	NoDelay     bool
}

// SeedResult is the output of a seed run.
type SeedResult struct {
	Apps    int `json:"apps"`
	Actions int `json:"actions"`
	Stored  int `json:"stored_actions"`
}

func (r SeedResult) String() string {
	return fmt.Sprintf("Seeded %d apps and %d actions (%d actions stored).", r.Apps, r.Actions, r.Stored)
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic catalog and store it",
		Long: `Ask the configured generator for a catalog of apps and actions, then store
every app and every action with its embedding. Inserts run concurrently with
a random pause before each one.

Example:
  appsearch seed
  appsearch seed --catalog ./catalog.json --no-delay`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return NewExitError(ExitCommandError, fmt.Sprintf("seed takes no arguments, got %q", args))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.CatalogPath, "catalog", "", "read the catalog from a JSON file instead of the configured generator")
	cmd.Flags().BoolVar(&opts.NoDelay, "no-delay", false, "skip the random pause before each insert")

	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	log := setupLogging(opts.RootOptions, cmd.ErrOrStderr())
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		_ = out.Error(err)
		return err
	}
	if opts.CatalogPath != "" {
		cfg.Generator.Type = "file"
		cfg.Generator.File = &config.FileGeneratorConfig{Path: opts.CatalogPath}
	}
	so := serviceOptions{withGenerator: true}
	if opts.NoDelay {
		so.delayer = seeder.NoDelay
	}

	ctx := cmd.Context()
	svc, err := buildService(ctx, cfg, log, so)
	if err != nil {
		_ = out.Error(err)
		return err
	}
	defer closeService(svc)

	report, err := svc.Seed(ctx)
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "seed failed", err)
	}
	stored, err := svc.CountActions(ctx)
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, "seed failed", err)
	}
	return out.Success(SeedResult{Apps: report.Apps, Actions: report.Actions, Stored: stored})
}
