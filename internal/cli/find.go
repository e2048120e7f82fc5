package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"appsearch/internal/domain"
	"appsearch/internal/tui"
)

// FindResult is the output of a lookup.
type FindResult struct {
	Query string       `json:"query"`
	Match domain.Match `json:"match"`
}

func (r FindResult) String() string {
	return tui.RenderMatch(r.Match, r.Query)
}

func runFind(opts *RootOptions, query string, cmd *cobra.Command) error {
	log := setupLogging(opts, cmd.ErrOrStderr())
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := loadConfig(opts)
	if err != nil {
		_ = out.Error(err)
		return err
	}
	ctx := cmd.Context()
	svc, err := buildService(ctx, cfg, log, serviceOptions{})
	if err != nil {
		_ = out.Error(err)
		return err
	}
	defer closeService(svc)

	match, err := svc.Find(ctx, query)
	if err != nil {
		_ = out.Error(err)
		return WrapExitError(ExitFailure, findFailure(err), err)
	}
	return out.Success(FindResult{Query: query, Match: match})
}

func runInteractive(opts *RootOptions, cmd *cobra.Command) error {
	// the TUI owns the terminal; keep logs quiet unless asked
	var logOut io.Writer = io.Discard
	if opts.Verbose {
		logOut = cmd.ErrOrStderr()
	}
	log := setupLogging(opts, logOut)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	svc, err := buildService(ctx, cfg, log, serviceOptions{})
	if err != nil {
		return err
	}
	defer closeService(svc)

	stored, err := svc.CountActions(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read store", err)
	}
	summary := fmt.Sprintf("%d actions stored (%s store). Up/Down browse earlier answers, Ctrl-C quits.", stored, cfg.Store.Type)
	if err := tui.Run(ctx, svc, summary); err != nil {
		return WrapExitError(ExitFailure, "interactive finder failed", err)
	}
	return nil
}

func findFailure(err error) string {
	switch domain.KindOf(err) {
	case domain.KindNoMatch:
		return "no stored actions to match (run 'appsearch seed' first)"
	case domain.KindInvalidQuery:
		return "invalid query"
	case domain.KindEmbedding:
		return "failed to embed query"
	}
	return "lookup failed"
}
