package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pantry/internal/imagestore"
	"github.com/roach88/pantry/internal/inventory"
)

// DefaultLocationName is the name template of locations added without one.
const DefaultLocationName = "Location #" + inventory.IDPlaceholder

// NewLocationCommand creates the location command group.
func NewLocationCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "location",
		Aliases: []string{"locations"},
		Short:   "Manage locations",
	}
	cmd.AddCommand(newLocationAddCommand(rootOpts))
	cmd.AddCommand(newLocationListCommand(rootOpts))
	cmd.AddCommand(newLocationShowCommand(rootOpts))
	cmd.AddCommand(newLocationUpdateCommand(rootOpts))
	cmd.AddCommand(newLocationRemoveCommand(rootOpts))
	return cmd
}

func newLocationAddCommand(rootOpts *RootOptions) *cobra.Command {
	var name, notes string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				tmpl := DefaultLocationName
				if cmd.Flags().Changed("name") {
					tmpl = name
				}
				l := app.Repo.NewLocation(tmpl)
				l.Notes = notes
				if err := app.Repo.PutLocation(ctx, l); err != nil {
					return err
				}
				return out.Success(message{Text: fmt.Sprintf("Added location %d: %s", l.ID, l.Name), Data: l})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "location name; "+inventory.IDPlaceholder+" is replaced by the id")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}

func newLocationListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List locations sorted by name",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				locations := app.Repo.Locations()
				inventory.SortLocations(locations, app.Config.LanguageTag())
				return out.Success(locationList(locations))
			})
		},
	}
}

func newLocationShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a location and what it holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("location", args[0])
				if err != nil {
					return err
				}
				l, ok := app.Repo.Location(id)
				if !ok {
					return notFound("location", id)
				}
				return out.Success(locationDetail{Location: l, Assignments: app.Repo.LocationAssignments(id)})
			})
		},
	}
}

func newLocationUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, notes string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a location or change its notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("location", args[0])
				if err != nil {
					return err
				}
				l, ok := app.Repo.Location(id)
				if !ok {
					return notFound("location", id)
				}
				if cmd.Flags().Changed("name") {
					l.Name = inventory.FormatName(name, l.ID)
				}
				if cmd.Flags().Changed("notes") {
					l.Notes = notes
				}
				if err := app.Repo.PutLocation(ctx, l); err != nil {
					return err
				}
				return out.Success(message{Text: fmt.Sprintf("Updated location %d: %s", l.ID, l.Name), Data: l})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "location name")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}

func newLocationRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var purgeImages bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a location and its assignments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("location", args[0])
				if err != nil {
					return err
				}
				l, ok := app.Repo.Location(id)
				if !ok {
					return notFound("location", id)
				}
				if err := app.Repo.DeleteLocation(ctx, id); err != nil {
					return err
				}
				if purgeImages {
					if err := app.Images.DeleteOwner(ctx, imagestore.Location, id, l.ImageIDs); err != nil {
						return err
					}
				}
				return out.Success(message{
					Text: fmt.Sprintf("Deleted location %d: %s", id, l.Name),
					Data: map[string]uint32{"id": id},
				})
			})
		},
	}
	cmd.Flags().BoolVar(&purgeImages, "images", false, "also delete the location's image files")
	return cmd
}
