package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/pantry/internal/consolidate"
	"github.com/roach88/pantry/internal/model"
)

// NewAssignCommand creates the assign command group.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assign",
		Aliases: []string{"assignment", "assignments"},
		Short:   "Manage which articles are stored at which location",
	}
	cmd.AddCommand(newAssignAddCommand(rootOpts))
	cmd.AddCommand(newAssignListCommand(rootOpts))
	cmd.AddCommand(newAssignSetAmountCommand(rootOpts))
	cmd.AddCommand(newAssignRemoveCommand(rootOpts))
	return cmd
}

func newAssignAddCommand(rootOpts *RootOptions) *cobra.Command {
	var amount uint32
	var expires string
	cmd := &cobra.Command{
		Use:   "add <article-id> <location-id>",
		Short: "Put units of an article at a location",
		Long: `Record a new batch of an article at a location, added today.

The expiration date defaults to today plus the article's shelf life.

Example:
  pantry assign add 17 4 --amount 6`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				articleID, err := parseID("article", args[0])
				if err != nil {
					return err
				}
				locationID, err := parseID("location", args[1])
				if err != nil {
					return err
				}
				if amount == 0 {
					return fmt.Errorf("%w: --amount must be at least 1", errInvalidArgs)
				}
				if err := parseDate("expires", expires); err != nil {
					return err
				}
				if _, ok := app.Repo.Article(articleID); !ok {
					return notFound("article", articleID)
				}
				if _, ok := app.Repo.Location(locationID); !ok {
					return notFound("location", locationID)
				}

				as := app.Repo.NewAssignment(articleID, locationID)
				as.Amount = amount
				if !app.Config.EnableExpirationDates {
					as.ExpirationDate = ""
				}
				if cmd.Flags().Changed("expires") {
					as.ExpirationDate = expires
				}

				list := append(app.Repo.LocationAssignments(locationID), as)
				if err := app.Repo.SetLocationAssignments(ctx, locationID, list); err != nil {
					return err
				}
				return out.Success(message{
					Text: fmt.Sprintf("Added assignment %d: %d × article %d at location %d", as.ID, as.Amount, articleID, locationID),
					Data: as,
				})
			})
		},
	}
	cmd.Flags().Uint32VarP(&amount, "amount", "n", 1, "number of units")
	cmd.Flags().StringVar(&expires, "expires", "", "expiration date (YYYY-MM-DD), overrides the shelf life")
	return cmd
}

func newAssignListCommand(rootOpts *RootOptions) *cobra.Command {
	var articleID, locationID uint32
	var includeConsumed bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List assignments",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				var list []model.Assignment
				switch {
				case locationID != 0:
					list = app.Repo.LocationAssignments(locationID)
				case articleID != 0:
					list = app.Repo.ArticleAssignments(articleID)
				default:
					list = app.Repo.Assignments()
				}

				filtered := make([]model.Assignment, 0, len(list))
				for _, a := range list {
					if articleID != 0 && a.ArticleID != articleID {
						continue
					}
					if a.Consumed() && !includeConsumed {
						continue
					}
					filtered = append(filtered, a)
				}
				return out.Success(assignmentList(filtered))
			})
		},
	}
	cmd.Flags().Uint32Var(&articleID, "article", 0, "only assignments of this article")
	cmd.Flags().Uint32Var(&locationID, "location", 0, "only assignments at this location")
	cmd.Flags().BoolVar(&includeConsumed, "consumed", false, "include consumed batches")
	return cmd
}

// editAssignment finds the live assignment id, lets edit rewrite its
// location's list, and saves the result.
func editAssignment(
	ctx context.Context,
	app *App,
	id uint32,
	edit func(list []model.Assignment) ([]model.Assignment, error),
) (model.Assignment, error) {
	var target model.Assignment
	found := false
	for _, a := range app.Repo.Assignments() {
		if a.ID == id {
			target, found = a, true
			break
		}
	}
	if !found {
		return model.Assignment{}, notFound("assignment", id)
	}

	list, err := edit(app.Repo.LocationAssignments(target.LocationID))
	if err != nil {
		return model.Assignment{}, err
	}
	if err := app.Repo.SetLocationAssignments(ctx, target.LocationID, list); err != nil {
		return model.Assignment{}, err
	}
	return target, nil
}

func newAssignSetAmountCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-amount <assignment-id> <amount>",
		Short: "Change the number of units of a batch (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("assignment", args[0])
				if err != nil {
					return err
				}
				amount, err := parseID("amount", args[1])
				if err != nil {
					return err
				}
				_, err = editAssignment(ctx, app, id, func(list []model.Assignment) ([]model.Assignment, error) {
					for i := range list {
						if list[i].ID == id {
							list[i].Amount = amount
						}
					}
					return list, nil
				})
				if err != nil {
					return err
				}
				return out.Success(message{
					Text: fmt.Sprintf("Set amount of assignment %d to %d", id, amount),
					Data: map[string]uint32{"id": id, "amount": amount},
				})
			})
		},
	}
}

func newAssignRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <assignment-id>",
		Aliases: []string{"delete"},
		Short:   "Remove a batch",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("assignment", args[0])
				if err != nil {
					return err
				}
				_, err = editAssignment(ctx, app, id, func(list []model.Assignment) ([]model.Assignment, error) {
					kept := list[:0]
					for _, a := range list {
						if a.ID != id {
							kept = append(kept, a)
						}
					}
					return kept, nil
				})
				if err != nil {
					return err
				}
				return out.Success(message{
					Text: fmt.Sprintf("Removed assignment %d", id),
					Data: map[string]uint32{"id": id},
				})
			})
		},
	}
}

// NewConsumeCommand creates the consume command.
func NewConsumeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "consume <assignment-id>",
		Short: "Mark a batch as used up today",
		Long: `Mark a batch as used up today.

The batch stays in the document with its consumed date so it still
counts in statistics. Split a batch first to consume single units.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("assignment", args[0])
				if err != nil {
					return err
				}
				var consumed model.Assignment
				_, err = editAssignment(ctx, app, id, func(list []model.Assignment) ([]model.Assignment, error) {
					for i := range list {
						if list[i].ID == id {
							list[i] = consolidate.Consume(list[i], app.Clock.Now())
							consumed = list[i]
						}
					}
					return list, nil
				})
				if err != nil {
					return err
				}
				return out.Success(message{
					Text: fmt.Sprintf("Consumed assignment %d on %s", id, consumed.ConsumedDate),
					Data: consumed,
				})
			})
		},
	}
}

// NewSplitCommand creates the split command.
func NewSplitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "split <assignment-id>",
		Short: "Split a batch into single units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("assignment", args[0])
				if err != nil {
					return err
				}
				taken := app.Repo.AssignmentIDs()
				var parts []model.Assignment
				_, err = editAssignment(ctx, app, id, func(list []model.Assignment) ([]model.Assignment, error) {
					next, err := consolidate.Split(list, id, taken, app.IDs)
					if err != nil {
						return nil, fmt.Errorf("%w: %w", errInvalidArgs, err)
					}
					for _, a := range next {
						if !taken.Has(a.ID) {
							parts = append(parts, a)
						}
					}
					return next, nil
				})
				if err != nil {
					return err
				}
				return out.Success(message{
					Text: fmt.Sprintf("Split assignment %d into %d", id, len(parts)),
					Data: parts,
				})
			})
		},
	}
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <assignment-id>",
		Short: "Merge a batch with identical batches at the same location",
		Long: `Merge a batch with every batch of the same article at the same
location that was added, expires and was consumed on the same dates.

The merged batch keeps the given id and holds the summed amount. A batch
without an identical partner is reported as an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("assignment", args[0])
				if err != nil {
					return err
				}
				var merged model.Assignment
				_, err = editAssignment(ctx, app, id, func(list []model.Assignment) ([]model.Assignment, error) {
					i := slices.IndexFunc(list, func(a model.Assignment) bool { return a.ID == id })
					if i == -1 || !consolidate.CanMerge(list, list[i]) {
						return nil, fmt.Errorf("%w: assignment %d has no identical batch to merge with", errInvalidArgs, id)
					}
					next, err := consolidate.Merge(list, id)
					if err != nil {
						return nil, fmt.Errorf("%w: %w", errInvalidArgs, err)
					}
					for _, a := range next {
						if a.ID == id {
							merged = a
						}
					}
					return next, nil
				})
				if err != nil {
					return err
				}
				return out.Success(message{
					Text: fmt.Sprintf("Assignment %d now holds %d", id, merged.Amount),
					Data: merged,
				})
			})
		},
	}
}
