package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustboard/internal/dashboard"
	"github.com/ppiankov/trustboard/internal/render"
)

var (
	leaderboardHTML  string
	leaderboardWatch time.Duration
)

// leaderboardCmd represents the leaderboard command
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the influencer trust leaderboard",
	Long: `Leaderboard loads the aggregate statistics and the ranked influencer list
and prints them as a table. Statistics that fail to load are shown as
unavailable; a list that fails to load fails the command.

Example:
  trustboard leaderboard
  trustboard leaderboard --html leaderboard.html
  trustboard leaderboard --watch 30s`,
	Args: cobra.NoArgs,
	RunE: runLeaderboard,
}

func init() {
	rootCmd.AddCommand(leaderboardCmd)
	leaderboardCmd.Flags().StringVar(&leaderboardHTML, "html", "", "write the page as static HTML to this file")
	leaderboardCmd.Flags().DurationVar(&leaderboardWatch, "watch", 0, "refetch and reprint the leaderboard at this interval until interrupted")
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	a, err := newApp(out, "")
	if err != nil {
		return err
	}
	defer a.close()

	if leaderboardWatch > 0 {
		if leaderboardHTML != "" {
			return fmt.Errorf("--watch and --html cannot be combined")
		}
		return watchLeaderboard(cmd.Context(), out, a, leaderboardWatch)
	}

	page := a.dashboard.Leaderboard(cmd.Context())

	if leaderboardHTML != "" {
		if err := writeHTMLFile(leaderboardHTML, func(f *os.File) error {
			return render.WriteLeaderboardHTML(f, page)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", leaderboardHTML)
	} else {
		fmt.Fprint(out, a.styles.Leaderboard(page))
	}

	if page.Status == dashboard.StatusError {
		return errReported
	}
	return nil
}

// watchLeaderboard prints the leaderboard, then refetches and reprints it
// every interval until ctx ends. A failed refetch keeps the last rows.
func watchLeaderboard(ctx context.Context, out io.Writer, a *app, interval time.Duration) error {
	fmt.Fprint(out, a.styles.Leaderboard(a.dashboard.Leaderboard(ctx)))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			page := a.dashboard.RefreshLeaderboard(ctx)
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "\n%s  refreshed %s\n", a.styles.Leaderboard(page), time.Now().Format(time.TimeOnly))
		}
	}
}

// writeHTMLFile creates path and lets write fill it
func writeHTMLFile(path string, write func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close html file: %w", closeErr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}
