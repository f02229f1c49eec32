package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/catalog"
	"github.com/s0up4200/marquee/filter"
	"github.com/s0up4200/marquee/tmdb"
)

var (
	filterArg string
	limitArg  int
)

// movieCategories maps the movies subcommand argument to its listing
var movieCategories = map[string]func(*catalog.Movies, context.Context) ([]tmdb.Movie, error){
	"now-playing": (*catalog.Movies).NowPlaying,
	"popular":     (*catalog.Movies).Popular,
	"upcoming":    (*catalog.Movies).Upcoming,
	"top-rated":   (*catalog.Movies).TopRated,
}

var seriesCategories = map[string]func(*catalog.Series, context.Context) ([]tmdb.Series, error){
	"airing-today": (*catalog.Series).AiringToday,
	"on-the-air":   (*catalog.Series).OnTheAir,
	"popular":      (*catalog.Series).Popular,
	"top-rated":    (*catalog.Series).TopRated,
}

var moviesCmd = &cobra.Command{
	Use:       "movies [" + strings.Join(keys(movieCategories), "|") + "]",
	Short:     "List movies by category",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: keys(movieCategories),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := "popular"
		if len(args) == 1 {
			category = args[0]
		}
		load, ok := movieCategories[category]
		if !ok {
			return fmt.Errorf("unknown movie category %q (must be one of %s)", category, strings.Join(keys(movieCategories), ", "))
		}

		items, err := load(movies, cmd.Context())
		if err != nil {
			return err
		}
		return printFiltered(cmd, items)
	},
}

var tvCmd = &cobra.Command{
	Use:       "tv [" + strings.Join(keys(seriesCategories), "|") + "]",
	Short:     "List TV shows by category",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: keys(seriesCategories),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := "popular"
		if len(args) == 1 {
			category = args[0]
		}
		load, ok := seriesCategories[category]
		if !ok {
			return fmt.Errorf("unknown TV category %q (must be one of %s)", category, strings.Join(keys(seriesCategories), ", "))
		}

		items, err := load(series, cmd.Context())
		if err != nil {
			return err
		}
		return printFiltered(cmd, items)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search {movie|tv} QUERY",
	Short: "Search movies or TV shows by title",
	Example: `  marquee search movie arrival
  marquee search tv "the expanse" --filter "rating >= 8"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := mediaKindArg(args[0])
		if err != nil {
			return err
		}
		query := strings.Join(args[1:], " ")

		if kind.IsMovie() {
			items, err := movies.Search(cmd.Context(), query)
			if err != nil {
				return err
			}
			return printFiltered(cmd, items)
		}

		items, err := series.Search(cmd.Context(), query)
		if err != nil {
			return err
		}
		return printFiltered(cmd, items)
	},
}

var showCmd = &cobra.Command{
	Use:   "show {movie|tv} ID",
	Short: "Show details, cast, trailers and your list state for one title",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := mediaKindArg(args[0])
		if err != nil {
			return err
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}

		var checker catalog.MembershipChecker
		if sessions.IsLoggedIn() {
			checker = coordinator
		}

		if kind.IsMovie() {
			bundle, err := movies.LoadMovie(cmd.Context(), id, checker)
			if err != nil {
				return err
			}
			if tmdb.IsNotFound(bundle.Detail.Err) {
				return bundle.Detail.Err
			}
			return out.MovieBundle(bundle)
		}

		bundle, err := series.LoadSeries(cmd.Context(), id, checker)
		if err != nil {
			return err
		}
		if tmdb.IsNotFound(bundle.Detail.Err) {
			return bundle.Detail.Err
		}
		return out.SeriesBundle(bundle)
	},
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the named filters from the config file",
	Long: `List the named filters from the config file.

Named filters are defined under 'filter:' in the config and can be used
anywhere --filter is accepted as --filter @name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		names := filters.ListFilters()
		if len(names) == 0 {
			out.Warn("No named filters configured")
			return nil
		}
		for _, name := range names {
			f, _ := filters.GetFilter(name)
			fmt.Fprintf(w, "@%-16s %s\n", name, f.Expression())
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{moviesCmd, tvCmd, searchCmd} {
		addListFlags(cmd)
	}

	rootCmd.AddCommand(moviesCmd)
	rootCmd.AddCommand(tvCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(filtersCmd)
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterArg, "filter", "f", "", `filter expression, or @name for a named filter (e.g. "rating >= 7 && year > 2015")`)
	cmd.Flags().IntVarP(&limitArg, "limit", "n", 0, "maximum number of results (overrides display.limit)")
}

// printFiltered applies --filter and --limit, then prints the items.
func printFiltered[T tmdb.Summarizer](cmd *cobra.Command, items []T) error {
	compiled, err := filters.Resolve(filterArg)
	if err != nil {
		return err
	}

	result := filter.Apply(filters, compiled, items)
	if result.Errors > 0 {
		out.Warn("%d items could not be evaluated by the filter and were skipped", result.Errors)
	}

	summaries := make([]tmdb.Summary, 0, len(result.Matches))
	for _, item := range result.Matches {
		summaries = append(summaries, item.Summary())
	}

	if cmd.Flags().Changed("limit") {
		if limitArg < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		out.opts.Limit = limitArg
	}
	return out.Summaries(summaries)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
