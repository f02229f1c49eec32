package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/catalog"
	"github.com/s0up4200/marquee/config"
	"github.com/s0up4200/marquee/filter"
	"github.com/s0up4200/marquee/membership"
	"github.com/s0up4200/marquee/session"
	"github.com/s0up4200/marquee/tmdb"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger

	tmdbClient  *tmdb.Client
	sessions    *session.Store
	coordinator *membership.Coordinator
	movies      *catalog.Movies
	series      *catalog.Series
	filters     *filter.Manager
	out         *printer

	// Global flags
	outputFormat string
	noColor      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "marquee",
	Short: "Browse movies and TV shows and manage your favorites and watchlist",
	Long: `marquee is a command-line client for The Movie Database (TMDB).

Browse what is playing, popular, upcoming or top rated, search the catalog,
look at the details of a movie or series, and keep your TMDB favorites and
watchlist in sync after signing in with 'marquee login'.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if isCancelled(err) {
			fmt.Fprintln(os.Stderr, "Interrupted")
			stop()
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		if tmdb.IsAuthError(err) {
			fmt.Fprintln(os.Stderr, "Sign in again with 'marquee login'.")
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, then ~/.marquee/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table or json (overrides display.output)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("output") {
		if outputFormat != "table" && outputFormat != "json" {
			return fmt.Errorf("invalid output format: %s (must be 'table' or 'json')", outputFormat)
		}
		cfg.Display.Output = outputFormat
	}
	if noColor {
		cfg.Display.Color = false
		cfg.Logging.Color = false
	}

	logger = setupLogger(cfg.Logging)

	tmdbClient, err = tmdb.NewClient(cfg.TMDB.APIKey, logger,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithSiteURL(cfg.TMDB.SiteURL),
		tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithUserAgent("marquee/"+version),
	)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	sessions, err = session.Open(session.NewFilePersister(cfg.Session.Path), logger)
	if err != nil {
		return err
	}

	coordinator = membership.NewCoordinator(tmdbClient, sessions, logger,
		membership.WithVerifyWrites(cfg.Membership.VerifyWrites))
	movies = catalog.NewMovies(tmdbClient, logger)
	series = catalog.NewSeries(tmdbClient, logger)

	filters = filter.NewManager(filter.WithLogger(logger))
	if err := filters.RegisterFilters(cfg.Filter); err != nil {
		return fmt.Errorf("invalid filter in config: %w", err)
	}

	out = newPrinter(cmd.OutOrStdout(), printerOptions{
		JSON:       cfg.Display.Output == "json",
		Color:      cfg.Display.Color && isTerminal(os.Stdout),
		Limit:      cfg.Display.Limit,
		ShowPoster: cfg.Display.ShowPoster,
		PosterSize: cfg.Display.PosterSize,
		ImageURL:   tmdbClient.ImageURL,
	})

	logger.Debug().
		Str("session_path", cfg.Session.Path).
		Bool("logged_in", sessions.IsLoggedIn()).
		Msg("Initialized")
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// requireSession fails early for commands that need a signed-in user
func requireSession() error {
	if !sessions.IsLoggedIn() {
		return fmt.Errorf("%w: run 'marquee login' first", tmdb.ErrNotAuthenticated)
	}
	return nil
}

// mediaKindArg parses the "movie" or "tv" positional argument
func mediaKindArg(arg string) (tmdb.MediaKind, error) {
	kind, ok := tmdb.ParseMediaKind(arg)
	if !ok {
		return "", fmt.Errorf("unknown media type %q (must be 'movie' or 'tv')", arg)
	}
	return kind, nil
}

// isCancelled reports whether err came from the user interrupting
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
