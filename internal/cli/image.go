package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/pantry/internal/imagestore"
	"github.com/roach88/pantry/internal/model"
)

// NewImageCommand creates the image command group.
func NewImageCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "image",
		Aliases: []string{"images"},
		Short:   "Manage photos of articles and locations",
		Long: `Manage photos of articles and locations.

<kind> is "article" or "location". Image ids are unique per owner.`,
	}
	cmd.AddCommand(newImageAddCommand(rootOpts))
	cmd.AddCommand(newImageGetCommand(rootOpts, false))
	cmd.AddCommand(newImageGetCommand(rootOpts, true))
	cmd.AddCommand(newImageRemoveCommand(rootOpts))
	return cmd
}

// imageOwner loads the image ids of an owner and returns a function that
// stores an updated id list.
func imageOwner(app *App, kind imagestore.OwnerKind, ownerID uint32) ([]uint32, func(context.Context, []uint32) error, error) {
	switch kind {
	case imagestore.Article:
		a, ok := app.Repo.Article(ownerID)
		if !ok {
			return nil, nil, notFound("article", ownerID)
		}
		return a.ImageIDs, func(ctx context.Context, ids []uint32) error {
			a.ImageIDs = ids
			a.Modified = model.FormatTimestamp(app.Clock.Now())
			return app.Repo.PutArticle(ctx, a)
		}, nil
	case imagestore.Location:
		l, ok := app.Repo.Location(ownerID)
		if !ok {
			return nil, nil, notFound("location", ownerID)
		}
		return l.ImageIDs, func(ctx context.Context, ids []uint32) error {
			l.ImageIDs = ids
			return app.Repo.PutLocation(ctx, l)
		}, nil
	}
	return nil, nil, fmt.Errorf("%w: owner kind %q", errInvalidArgs, kind)
}

func parseImageArgs(args []string) (imagestore.OwnerKind, uint32, error) {
	kind, err := imagestore.ParseOwnerKind(args[0])
	if err != nil {
		return "", 0, errInvalid(err)
	}
	ownerID, err := parseID(string(kind), args[1])
	if err != nil {
		return "", 0, err
	}
	return kind, ownerID, nil
}

func newImageAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <kind> <owner-id> <file|->",
		Short: "Attach a photo to an article or location",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				kind, ownerID, err := parseImageArgs(args)
				if err != nil {
					return err
				}
				ids, store, err := imageOwner(app, kind, ownerID)
				if err != nil {
					return err
				}
				data, err := readInput(cmd, args[2])
				if err != nil {
					return err
				}

				imageID := imagestore.NewImageID(app.IDs, ids)
				if err := app.Images.Save(ctx, kind, ownerID, imageID, data); err != nil {
					return err
				}
				if err := store(ctx, append(ids, imageID)); err != nil {
					return err
				}
				return out.Success(message{
					Text: fmt.Sprintf("Added image %d to %s %d", imageID, kind, ownerID),
					Data: map[string]any{"kind": kind, "ownerId": ownerID, "imageId": imageID},
				})
			})
		},
	}
}

func newImageGetCommand(rootOpts *RootOptions, thumbnail bool) *cobra.Command {
	var output string
	use, short := "get", "Write a photo to a file or stdout"
	if thumbnail {
		use, short = "thumb", "Write a 256x256 thumbnail of a photo to a file or stdout"
	}
	cmd := &cobra.Command{
		Use:   use + " <kind> <owner-id> <image-id>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				kind, ownerID, err := parseImageArgs(args)
				if err != nil {
					return err
				}
				imageID, err := parseID("image", args[2])
				if err != nil {
					return err
				}

				var data []byte
				var ok bool
				if thumbnail {
					data, ok = app.Images.Thumbnail(ctx, kind, ownerID, imageID)
				} else {
					data, ok, err = app.Images.Get(ctx, kind, ownerID, imageID)
					if err != nil {
						return err
					}
				}
				if !ok {
					return fmt.Errorf("image %s/%d/%d: %w", kind, ownerID, imageID, errNotFound)
				}

				if output == "" || output == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
				}
				return out.Success(message{
					Text: fmt.Sprintf("Wrote %d bytes to %s", len(data), output),
					Data: map[string]any{"file": output, "bytes": len(data)},
				})
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImageRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <kind> <owner-id> <image-id>",
		Aliases: []string{"delete"},
		Short:   "Remove a photo and its thumbnail",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				kind, ownerID, err := parseImageArgs(args)
				if err != nil {
					return err
				}
				imageID, err := parseID("image", args[2])
				if err != nil {
					return err
				}
				ids, store, err := imageOwner(app, kind, ownerID)
				if err != nil {
					return err
				}

				if err := app.Images.Delete(ctx, kind, ownerID, imageID); err != nil {
					return err
				}
				if slices.Contains(ids, imageID) {
					kept := slices.DeleteFunc(slices.Clone(ids), func(id uint32) bool { return id == imageID })
					if err := store(ctx, kept); err != nil {
						return err
					}
				}
				return out.Success(message{
					Text: fmt.Sprintf("Removed image %d from %s %d", imageID, kind, ownerID),
					Data: map[string]any{"kind": kind, "ownerId": ownerID, "imageId": imageID},
				})
			})
		},
	}
}
