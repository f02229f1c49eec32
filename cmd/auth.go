package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/marquee/auth"
)

var (
	loginNoBrowser bool
	loginForce     bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to TMDB",
	Long: `Sign in to TMDB.

A request token is created and its approval page is opened in your browser.
Approve it there, come back, and press Enter to finish signing in. The
session is stored in session.path and used by the favorites and watchlist
commands.`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sessions.IsLoggedIn() {
			out.Warn("Not signed in")
			return nil
		}
		if err := auth.Logout(cmd.Context(), tmdbClient, sessions, logger); err != nil {
			return fmt.Errorf("failed to sign out: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		account, err := coordinator.Account(cmd.Context())
		if err != nil {
			return err
		}
		return out.Account(account)
	},
}

func init() {
	loginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "print the approval URL instead of opening a browser")
	loginCmd.Flags().BoolVar(&loginForce, "force", false, "sign in again even if a session is stored")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	if sessions.IsLoggedIn() && !loginForce {
		out.Warn("Already signed in; use --force to sign in again")
		return nil
	}

	flow := auth.NewFlow(tmdbClient, newBrowserApprover(w, !loginNoBrowser, logger), sessions, logger)
	if err := flow.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintln(w, "Press Enter once you have approved the request...")
	if err := waitForEnter(ctx, cmd.InOrStdin()); err != nil {
		return err
	}

	// Another process may have signed in or out while we waited
	changed, err := sessions.Reload()
	if err != nil {
		return err
	}
	logger.Debug().Bool("changed", changed).Bool("logged_in", sessions.IsLoggedIn()).Msg("Reloaded session")

	if changed && sessions.IsLoggedIn() && !loginForce {
		out.Warn("Signed in elsewhere while waiting; using that session")
	} else if err := flow.Resume(ctx); err != nil {
		return err
	}

	account, err := coordinator.Account(ctx)
	if err != nil {
		// The session is stored even if the account cannot be shown
		logger.Warn().Err(err).Msg("Signed in, but failed to fetch account")
		fmt.Fprintln(w, "Signed in")
		return nil
	}
	return out.Account(account)
}

// waitForEnter blocks until a line is read from r or ctx is done.
func waitForEnter(ctx context.Context, r io.Reader) error {
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(r).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// browserApprover shows the approval URL and optionally opens it.
type browserApprover struct {
	w      io.Writer
	open   bool
	opener func(ctx context.Context, url string) error
	logger zerolog.Logger
}

func newBrowserApprover(w io.Writer, open bool, logger zerolog.Logger) *browserApprover {
	return &browserApprover{w: w, open: open, opener: openBrowser, logger: logger}
}

// Approve implements auth.Approver. Failing to launch a browser is not an
// error since the URL has been printed.
func (a *browserApprover) Approve(ctx context.Context, approvalURL string) error {
	fmt.Fprintf(a.w, "Approve this request in your browser:\n\n  %s\n\n", approvalURL)
	if !a.open {
		return nil
	}
	if err := a.opener(ctx, approvalURL); err != nil {
		a.logger.Debug().Err(err).Msg("Could not open browser")
	}
	return nil
}

func openBrowser(ctx context.Context, url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	return cmd.Start()
}
