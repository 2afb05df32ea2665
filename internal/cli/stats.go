package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/pantry/internal/config"
	"github.com/roach88/pantry/internal/stats"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filter   stats.Filter
		allYears bool
		years    bool
	)
	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"statistics"},
		Short:   "Show units added and consumed over time",
		Long: `Show how many units were added and consumed per period.

With --year the breakdown is by month of that year. Without it the
breakdown follows the statisticTimespan setting: "year" shows one row per
year, "month" shows the months of the current year.

Example:
  pantry stats --year 2024 --location 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.runWithApp(cmd, true, func(ctx context.Context, app *App, out *OutputFormatter) error {
				assignments := app.Repo.Assignments()
				if years {
					return out.Success(stats.Years(assignments))
				}
				if !cmd.Flags().Changed("year") && !allYears &&
					app.Config.StatisticTimespan == config.TimespanMonth {
					filter.Year = strconv.Itoa(app.Clock.Now().Year())
				}
				periods, err := stats.Compute(assignments, filter)
				if err != nil {
					return errInvalid(err)
				}
				return out.Success(periodList(periods))
			})
		},
	}
	cmd.Flags().StringVar(&filter.Year, "year", "", "monthly breakdown of this year (YYYY)")
	cmd.Flags().BoolVar(&allYears, "all", false, "one row per year, ignoring statisticTimespan")
	cmd.Flags().BoolVar(&years, "years", false, "list the years that have data")
	cmd.Flags().Uint32Var(&filter.LocationID, "location", 0, "only this location")
	cmd.Flags().Uint32Var(&filter.ArticleID, "article", 0, "only this article")
	return cmd
}
