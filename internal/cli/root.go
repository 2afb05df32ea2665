package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/pantry/internal/clock"
	"github.com/roach88/pantry/internal/idgen"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DataDir    string

	// Clock and IDs override time and id generation (for testing).
	// If nil, the system clock and random ids are used.
	Clock clock.Clock
	IDs   idgen.Source
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the pantry CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command with a caller-supplied
// clock and id source. Flag values parsed later overwrite the other fields.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	return newRootCommand(opts)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pantry",
		Short: "pantry - household inventory",
		Long: `Keep track of what is stored where at home.

Articles describe things you keep, locations describe where you keep
them, and assignments record how many units of an article sit at a
location, when they were added and when they expire.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				msg := fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
				out := &OutputFormatter{Format: "text", Writer: cmd.ErrOrStderr()}
				_ = out.Error(ErrCodeInvalidArgs, msg, nil)
				return NewExitError(ExitCommandError, msg)
			}
			if opts.ConfigPath == "" {
				opts.ConfigPath = os.Getenv("PANTRY_CONFIG")
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file (default $PANTRY_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewArticleCommand(opts))
	cmd.AddCommand(NewLocationCommand(opts))
	cmd.AddCommand(NewAssignCommand(opts))
	cmd.AddCommand(NewConsumeCommand(opts))
	cmd.AddCommand(NewSplitCommand(opts))
	cmd.AddCommand(NewMergeCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewPurgeCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewImageCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// runWithApp opens the application, runs fn, and reports any error through
// the formatter. loadDocument is false for commands that must work while
// the current document is unreadable.
func (o *RootOptions) runWithApp(
	cmd *cobra.Command,
	loadDocument bool,
	fn func(ctx context.Context, app *App, out *OutputFormatter) error,
) error {
	out := o.formatter(cmd)
	ctx := cmd.Context()

	app, err := openApp(ctx, o, cmd.ErrOrStderr(), loadDocument)
	if err != nil {
		return out.Fail(err)
	}
	defer app.Close()

	if err := fn(ctx, app, out); err != nil {
		return out.Fail(err)
	}
	return nil
}
