package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/trustboard/internal/dashboard"
	"github.com/ppiankov/trustboard/internal/model"
	"github.com/ppiankov/trustboard/internal/tui"
	"github.com/ppiankov/trustboard/internal/wizard"
)

var (
	researchHandle    string
	researchTimeRange string
	researchClaims    int
	researchMaxTokens int
	researchJournals  []string
	researchNotes     string
	researchNoFollow  bool
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Verify an influencer and start a research task",
	Long: `Research verifies an influencer handle with the backend, then creates a
research task that re-checks their claims against the selected journals.

Without --handle an interactive wizard is started. With --handle the same
steps run from flags; unset flags keep the wizard defaults
(last-month, 50 claims, 2048 tokens, PubMed Central and Nature).

After the task is created the influencer's profile is shown.

Example:
  trustboard research
  trustboard research --handle hubermanlab --time-range last-year --claims 25 \
    --journal Nature --journal Science`,
	Args: cobra.NoArgs,
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().StringVar(&researchHandle, "handle", "", "influencer handle; runs without the interactive wizard")
	researchCmd.Flags().StringVar(&researchTimeRange, "time-range", string(model.TimeRangeLastMonth), "last-week, last-month, last-year or all")
	researchCmd.Flags().IntVar(&researchClaims, "claims", 50, "claims to analyze (1-100)")
	researchCmd.Flags().IntVar(&researchMaxTokens, "max-tokens", 2048, "token budget (at least 1024)")
	researchCmd.Flags().StringArrayVar(&researchJournals, "journal", nil, "journal to check against (repeatable)")
	researchCmd.Flags().StringVar(&researchNotes, "notes", "", "instructions or focus areas")
	researchCmd.Flags().BoolVar(&researchNoFollow, "no-follow", false, "do not show the influencer after the task is created")
}

func runResearch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	interactive := researchHandle == ""

	logPath := ""
	if interactive {
		logPath = filepath.Join(os.TempDir(), "trustboard.log")
	}
	a, err := newApp(out, logPath)
	if err != nil {
		return err
	}
	defer a.close()

	nav := &tui.Navigation{}
	wiz := wizard.New(a.client, nav, a.logger)

	if interactive {
		route, err := tui.Run(cmd.Context(), wiz, nav, a.styles)
		if err != nil {
			return err
		}
		if route == "" {
			return nil
		}
		return a.follow(cmd, out, route)
	}

	if err := runResearchFlags(cmd, out, wiz); err != nil {
		return err
	}
	return a.follow(cmd, out, nav.Route())
}

// runResearchFlags drives the wizard from command-line flags
func runResearchFlags(cmd *cobra.Command, out io.Writer, wiz *wizard.Wizard) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	if err := wiz.SetHandle(researchHandle); err != nil {
		return fmt.Errorf("set handle: %w", err)
	}
	if err := wiz.Verify(ctx); err != nil {
		return fmt.Errorf("verify %q: %w", researchHandle, err)
	}
	snap := wiz.Snapshot()
	if snap.Failure != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s\n", snap.Failure.Message)
		return errReported
	}
	fmt.Fprintf(out, "✓ Verified %s\n", snap.Identity.MainName)

	if flags.Changed("time-range") {
		r, err := model.ParseTimeRange(researchTimeRange)
		if err != nil {
			return err
		}
		if err := wiz.SetTimeRange(r); err != nil {
			return err
		}
	}
	if flags.Changed("claims") {
		if err := wiz.SetClaimsCount(researchClaims); err != nil {
			return err
		}
	}
	if flags.Changed("max-tokens") {
		if err := wiz.SetMaxTokens(researchMaxTokens); err != nil {
			return err
		}
	}
	if flags.Changed("journal") {
		if err := selectJournals(wiz, researchJournals); err != nil {
			return err
		}
	}
	if flags.Changed("notes") {
		if err := wiz.SetNotes(researchNotes); err != nil {
			return err
		}
	}

	if err := wiz.Submit(ctx); err != nil {
		return fmt.Errorf("submit research task: %w", err)
	}
	snap = wiz.Snapshot()
	if snap.Failure != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s\n", snap.Failure.Message)
		if snap.Failure.Details != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", snap.Failure.Details)
		}
		return errReported
	}

	d := snap.Draft
	fmt.Fprintf(out, "✓ Research task created")
	if snap.Task != nil && snap.Task.ID != "" {
		fmt.Fprintf(out, " (%s)", snap.Task.ID)
	}
	fmt.Fprintf(out, ": %s, %d claims, %d tokens, %d journals\n",
		d.TimeRange.Label(), d.ClaimsCount, d.MaxTokens, len(d.SelectedJournals))
	return nil
}

// selectJournals makes the draft's selection exactly journals
func selectJournals(wiz *wizard.Wizard, journals []string) error {
	for _, j := range journals {
		if !slices.Contains(model.Journals, j) {
			return fmt.Errorf("unknown journal %q", j)
		}
	}
	for _, j := range model.Journals {
		want := slices.Contains(journals, j)
		if wiz.Snapshot().Draft.HasJournal(j) != want {
			if err := wiz.ToggleJournal(j); err != nil {
				return err
			}
		}
	}
	return nil
}

// follow shows the page a navigation route points at
func (a *app) follow(cmd *cobra.Command, out io.Writer, route string) error {
	if researchNoFollow || route == "" {
		return nil
	}
	id, ok := dashboard.ParseRoute(route)
	if !ok {
		a.logger.Warn("unknown route", zap.String("route", route))
		return nil
	}
	// a new task makes anything cached about the influencer out of date
	a.queries.Clear()
	fmt.Fprintln(out)
	return showInfluencer(cmd, out, a, id, dashboard.TabClaims)
}
