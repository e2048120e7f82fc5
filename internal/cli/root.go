package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath  string
	Verbose     bool
	Format      string // "json" | "text"
	Interactive bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Given a description it prints the
// closest stored action.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "appsearch [description]",
		Short: "Find the app action that best matches a description",
		Long: `appsearch seeds a store with a synthetic catalog of apps and their actions,
each action embedded as a vector, and answers free-text lookups with the
single closest action by cosine distance.

Example:
  appsearch seed
  appsearch "add a new person to my address book"
  appsearch --interactive`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Interactive {
				return runInteractive(opts, cmd)
			}
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return NewExitError(ExitCommandError, "a description is required (or use --interactive)")
			}
			return runFind(opts, query, cmd)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	})

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config (default ./config.yaml or ~/.config/appsearch/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "open the interactive finder")

	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
