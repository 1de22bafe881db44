package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustboard/internal/dashboard"
	"github.com/ppiankov/trustboard/internal/render"
)

var (
	influencerTab  string
	influencerHTML string
)

// influencerCmd represents the influencer command
var influencerCmd = &cobra.Command{
	Use:   "influencer <id>",
	Short: "Show one influencer's trust profile and claims",
	Long: `Influencer loads an influencer by id and shows the trust score, revenue,
followers and the analyzed claims with the journals that verified,
questioned or debunked each one.

Example:
  trustboard influencer 7
  trustboard influencer 7 --tab monetization
  trustboard influencer 7 --html huberman.html`,
	Args: cobra.ExactArgs(1),
	RunE: runInfluencer,
}

func init() {
	rootCmd.AddCommand(influencerCmd)
	influencerCmd.Flags().StringVar(&influencerTab, "tab", string(dashboard.TabClaims), "section to show (claims, products, monetization)")
	influencerCmd.Flags().StringVar(&influencerHTML, "html", "", "write the page as static HTML to this file")
}

func runInfluencer(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid influencer id %q", args[0])
	}
	tab, err := parseTab(influencerTab)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	a, err := newApp(out, "")
	if err != nil {
		return err
	}
	defer a.close()

	if influencerHTML != "" {
		page := a.dashboard.Detail(cmd.Context(), id)
		if err := writeHTMLFile(influencerHTML, func(f *os.File) error {
			return render.WriteDetailHTML(f, page)
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", influencerHTML)
		if page.Status == dashboard.StatusError {
			return errReported
		}
		return nil
	}

	return showInfluencer(cmd, out, a, id, tab)
}

// showInfluencer prints the detail page for id; research uses it to follow
// the route of a newly created task
func showInfluencer(cmd *cobra.Command, out io.Writer, a *app, id int, tab dashboard.Tab) error {
	page := a.dashboard.Detail(cmd.Context(), id)
	fmt.Fprint(out, a.styles.Detail(page, tab))
	if page.Status == dashboard.StatusError {
		return errReported
	}
	return nil
}

func parseTab(s string) (dashboard.Tab, error) {
	for _, t := range dashboard.Tabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q (want claims, products or monetization)", s)
}
