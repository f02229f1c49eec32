package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/membership"
	"github.com/s0up4200/marquee/tmdb"
)

// newListCmd builds the favorites or watchlist command tree
func newListCmd(list tmdb.ListKind, use, title string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Show and change your %s", title),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeApp(cmd, args); err != nil {
				return err
			}
			return requireSession()
		},
	}

	show := &cobra.Command{
		Use:   "list [movie|tv]",
		Short: fmt.Sprintf("List the movies or TV shows on your %s", title),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := tmdb.MediaKindMovie
			if len(args) == 1 {
				var err error
				if kind, err = mediaKindArg(args[0]); err != nil {
					return err
				}
			}

			items, err := coordinator.Summaries(cmd.Context(), list, kind)
			if err != nil {
				return err
			}
			return printFiltered(cmd, items)
		},
	}
	addListFlags(show)

	add := &cobra.Command{
		Use:   "add {movie|tv} ID",
		Short: fmt.Sprintf("Add a movie or TV show to your %s", title),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetMember(cmd, list, args, true)
		},
	}

	remove := &cobra.Command{
		Use:     "remove {movie|tv} ID",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Remove a movie or TV show from your %s", title),
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetMember(cmd, list, args, false)
		},
	}

	cmd.AddCommand(show, add, remove)
	return cmd
}

// runSetMember checks the current membership and writes only if it differs.
func runSetMember(cmd *cobra.Command, list tmdb.ListKind, args []string, value bool) error {
	kind, err := mediaKindArg(args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	toggle := coordinator.NewToggle(list, membership.Ref{Kind: kind, ID: id})
	if err := toggle.Refresh(cmd.Context()); err != nil {
		return fmt.Errorf("failed to check %s: %w", list, err)
	}

	if toggle.Value() == value {
		logger.Debug().Str("list", string(list)).Int64("id", id).Msg("Membership already as requested")
		return out.Membership(list, kind, id, value)
	}

	if err := toggle.Set(cmd.Context(), value); err != nil {
		var apiErr *tmdb.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 200 {
			return fmt.Errorf("TMDB refused the change: %s", apiErr.StatusMessage)
		}
		return fmt.Errorf("failed to update %s: %w", list, err)
	}
	return out.Membership(list, kind, id, toggle.Value())
}

var userListsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show your custom TMDB lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		account, err := coordinator.Account(cmd.Context())
		if err != nil {
			return err
		}
		lists, err := tmdbClient.UserLists(cmd.Context(), account.ID, sessions.Current())
		if err != nil {
			return err
		}
		return out.UserLists(lists)
	},
}

func init() {
	rootCmd.AddCommand(newListCmd(tmdb.ListFavorite, "favorites", "favorites"))
	rootCmd.AddCommand(newListCmd(tmdb.ListWatchlist, "watchlist", "watchlist"))
	rootCmd.AddCommand(userListsCmd)
}
