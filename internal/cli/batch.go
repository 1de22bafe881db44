package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustboard/internal/api"
	"github.com/ppiankov/trustboard/internal/wizard"
	"github.com/ppiankov/trustboard/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// verifyBatchCmd represents the verify-batch command
var verifyBatchCmd = &cobra.Command{
	Use:   "verify-batch <file>",
	Short: "Verify many influencer handles from a file in parallel",
	Long: `Verify-batch checks which handles belong to tracked influencers:
- Read handles from the input file (one per line, # starts a comment)
- Verify them in parallel with a configurable worker count
- Print one line per handle, in file order

Example:
  trustboard verify-batch handles.txt
  trustboard verify-batch handles.txt --concurrency 8 --timeout 2m`,
	Args: cobra.ExactArgs(1),
	RunE: runVerifyBatch,
}

func init() {
	rootCmd.AddCommand(verifyBatchCmd)

	verifyBatchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: batch.workers)")
	verifyBatchCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "total timeout for the batch")
}

func runVerifyBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	errOut := cmd.ErrOrStderr()
	out := cmd.OutOrStdout()

	a, err := newApp(out, "")
	if err != nil {
		return err
	}
	defer a.close()

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Batch.Workers
	}

	if rate := a.cfg.Batch.VerifiesPerSecond; rate > 0 {
		a.client.Pace(api.OpVerify, rate, workers)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "  Trustboard Batch Verification\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "  Input file:   %s\n", file)
	fmt.Fprintf(errOut, "  Backend:      %s\n", a.client.BaseURL())
	fmt.Fprintf(errOut, "  Workers:      %d\n", workers)
	if rate := a.cfg.Batch.VerifiesPerSecond; rate > 0 {
		fmt.Fprintf(errOut, "  Rate:         %g verifies/s\n", rate)
	}
	fmt.Fprintf(errOut, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(errOut, "\n")

	verifier := worker.NewBatchVerifier(a.client, workers, a.logger)
	results, err := verifier.VerifyFile(ctx, file)
	if err != nil {
		return fmt.Errorf("verify file: %w", err)
	}

	found, missing, failed := 0, 0, 0
	for _, r := range results {
		if r.Err != nil {
			if api.KindOf(r.Err) == api.KindNotFound {
				missing++
			} else {
				failed++
			}
			fmt.Fprintf(out, "✗ %s: %s\n", r.Handle, wizard.VerifyFailure(r.Err).Message)
			continue
		}
		found++
		fmt.Fprintf(out, "✓ %s → %s (id %d)\n", r.Handle, r.Influencer.MainName, r.Influencer.ID)
	}

	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "  Batch Complete\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "  Total:     %d handles\n", len(results))
	fmt.Fprintf(errOut, "  Verified:  %d\n", found)
	fmt.Fprintf(errOut, "  Unknown:   %d\n", missing)
	fmt.Fprintf(errOut, "  Failed:    %d\n", failed)
	fmt.Fprintf(errOut, "\n")

	return nil
}
