package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pantry/internal/imagestore"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the inventory with a JSON document",
		Long: `Replace the inventory with the JSON document in file ("-" reads stdin).

The document is checked before anything is changed: it must parse, every
name must be non-blank, and every assignment must refer to an existing
article and location. The current document is backed up first.

Import works even when the current document is unreadable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, false, func(ctx context.Context, app *App, out *OutputFormatter) error {
				content, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}
				result, err := app.Repo.Import(ctx, string(content))
				if err != nil {
					return err
				}
				text := fmt.Sprintf("Imported %d articles, %d locations, %d assignments",
					result.Articles, result.Locations, result.Assignments)
				if result.Backup != "" {
					text += fmt.Sprintf(" (previous document saved as %s)", result.Backup)
				}
				return out.Success(message{Text: text, Data: result})
			})
		},
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the raw inventory document",
		Long: `Write the raw inventory document to file, or to stdout when no file
is given. The output is always the document itself, regardless of --format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, false, func(ctx context.Context, app *App, out *OutputFormatter) error {
				content, err := app.Repo.Export(ctx)
				if err != nil {
					return err
				}
				if content == "" {
					return fmt.Errorf("no document to export: %w", errNotFound)
				}
				if len(args) == 0 {
					_, err := io.WriteString(cmd.OutOrStdout(), content)
					return err
				}
				if err := os.WriteFile(args[0], []byte(content), 0o644); err != nil {
					return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
				}
				return out.Success(message{
					Text: fmt.Sprintf("Exported to %s", args[0]),
					Data: map[string]any{"file": args[0], "bytes": len(content)},
				})
			})
		},
	}
}

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the inventory document to a timestamped backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, false, func(ctx context.Context, app *App, out *OutputFormatter) error {
				name, ok := app.Repo.Backup(ctx)
				if !ok {
					return fmt.Errorf("no backup created: %w", errNotFound)
				}
				return out.Success(message{
					Text: fmt.Sprintf("Backup saved as %s", name),
					Data: map[string]string{"backup": name},
				})
			})
		},
	}
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	var keepImages bool
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove deleted records from the document for good",
		Long: `Remove deleted articles, locations and assignments from the document.

Deleted records are normally kept so that deletions stay visible in the
document. Purge drops them along with the images of purged articles and
locations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				result, err := app.Repo.Purge(ctx)
				if err != nil {
					return err
				}
				if !keepImages {
					for id, images := range result.ArticleImages {
						if err := app.Images.DeleteOwner(ctx, imagestore.Article, id, images); err != nil {
							return err
						}
					}
					for id, images := range result.LocationImages {
						if err := app.Images.DeleteOwner(ctx, imagestore.Location, id, images); err != nil {
							return err
						}
					}
				}
				return out.Success(message{
					Text: fmt.Sprintf("Purged %d articles, %d locations, %d assignments",
						result.Articles, result.Locations, result.Assignments),
					Data: map[string]int{
						"articles":    result.Articles,
						"locations":   result.Locations,
						"assignments": result.Assignments,
					},
				})
			})
		},
	}
	cmd.Flags().BoolVar(&keepImages, "keep-images", false, "keep image files of purged records")
	return cmd
}

// readInput reads a file argument; "-" reads the command's input.
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidArgs, err)
	}
	return data, nil
}
