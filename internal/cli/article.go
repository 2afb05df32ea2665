package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pantry/internal/imagestore"
	"github.com/roach88/pantry/internal/inventory"
	"github.com/roach88/pantry/internal/model"
)

// DefaultArticleName is the name template of articles added without one.
const DefaultArticleName = "Article #" + inventory.IDPlaceholder

// articleFlags holds the editable fields of an article.
type articleFlags struct {
	name           string
	brand          string
	abbreviation   string
	minimum        uint32
	expirationDays uint32
	notes          string
}

func (f *articleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "article name; "+inventory.IDPlaceholder+" is replaced by the id")
	cmd.Flags().StringVar(&f.brand, "brand", "", "brand")
	cmd.Flags().StringVar(&f.abbreviation, "abbreviation", "", "short name")
	cmd.Flags().Uint32Var(&f.minimum, "min", 0, "minimum amount to keep in stock")
	cmd.Flags().Uint32Var(&f.expirationDays, "expiration-days", 0, "default shelf life in days (0 = none)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
}

// apply copies the flags the user set onto a.
func (f *articleFlags) apply(cmd *cobra.Command, a *model.Article) {
	changed := cmd.Flags().Changed
	if changed("name") {
		a.Name = inventory.FormatName(f.name, a.ID)
	}
	if changed("brand") {
		a.Brand = f.brand
	}
	if changed("abbreviation") {
		a.Abbreviation = f.abbreviation
	}
	if changed("min") {
		a.MinimumAmount = f.minimum
	}
	if changed("expiration-days") {
		if f.expirationDays == 0 {
			a.DefaultExpirationDays = nil
		} else {
			days := f.expirationDays
			a.DefaultExpirationDays = &days
		}
	}
	if changed("notes") {
		a.Notes = f.notes
	}
}

// NewArticleCommand creates the article command group.
func NewArticleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "article",
		Aliases: []string{"articles"},
		Short:   "Manage articles",
	}
	cmd.AddCommand(newArticleAddCommand(rootOpts))
	cmd.AddCommand(newArticleListCommand(rootOpts))
	cmd.AddCommand(newArticleShowCommand(rootOpts))
	cmd.AddCommand(newArticleUpdateCommand(rootOpts))
	cmd.AddCommand(newArticleRemoveCommand(rootOpts))
	return cmd
}

func newArticleAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &articleFlags{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an article",
		Long: `Add an article with a fresh id.

Without --name the article is called "Article #<id>".

Example:
  pantry article add --name Milk --min 2 --expiration-days 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				tmpl := DefaultArticleName
				if cmd.Flags().Changed("name") {
					tmpl = flags.name
				}
				a := app.Repo.NewArticle(tmpl)
				flags.apply(cmd, &a)
				if err := app.Repo.PutArticle(ctx, a); err != nil {
					return err
				}
				return out.Success(message{Text: fmt.Sprintf("Added article %d: %s", a.ID, a.Name), Data: a})
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newArticleListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List articles sorted by name",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				articles := app.Repo.Articles()
				inventory.SortArticles(articles, app.Config.LanguageTag())
				return out.Success(articleList(articles))
			})
		},
	}
}

func newArticleShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an article and its assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("article", args[0])
				if err != nil {
					return err
				}
				a, ok := app.Repo.Article(id)
				if !ok {
					return notFound("article", id)
				}
				assignments := app.Repo.ArticleAssignments(id)
				return out.Success(articleDetail{
					Article:     a,
					Assignments: assignments,
					Stock:       stock(assignments),
				})
			})
		},
	}
}

func newArticleUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &articleFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an article",
		Long: `Change the fields given as flags; other fields keep their values.

Example:
  pantry article update 42 --brand "Farm & Co" --expiration-days 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("article", args[0])
				if err != nil {
					return err
				}
				a, ok := app.Repo.Article(id)
				if !ok {
					return notFound("article", id)
				}
				flags.apply(cmd, &a)
				a.Modified = model.FormatTimestamp(app.Clock.Now())
				if err := app.Repo.PutArticle(ctx, a); err != nil {
					return err
				}
				return out.Success(message{Text: fmt.Sprintf("Updated article %d: %s", a.ID, a.Name), Data: a})
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newArticleRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	var purgeImages bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an article and its assignments",
		Long: `Mark an article and every assignment of it as deleted.

The records stay in the document until "pantry purge". With --images the
article's image files are removed right away.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				id, err := parseID("article", args[0])
				if err != nil {
					return err
				}
				a, ok := app.Repo.Article(id)
				if !ok {
					return notFound("article", id)
				}
				if err := app.Repo.DeleteArticle(ctx, id); err != nil {
					return err
				}
				if purgeImages {
					if err := app.Images.DeleteOwner(ctx, imagestore.Article, id, a.ImageIDs); err != nil {
						return err
					}
				}
				return out.Success(message{
					Text: fmt.Sprintf("Deleted article %d: %s", id, a.Name),
					Data: map[string]uint32{"id": id},
				})
			})
		},
	}
	cmd.Flags().BoolVar(&purgeImages, "images", false, "also delete the article's image files")
	return cmd
}
