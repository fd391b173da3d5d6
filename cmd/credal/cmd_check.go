package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"credal/internal/loader"
	"credal/internal/program"
)

// checkCmd verifies that each input normalizes, reporting per file.
var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Parse and normalize each input, reporting per-file status",
	Long: `Runs the full parse and normalization pipeline over each input
independently and in parallel. Inputs do not get merged; a failure in
one file never hides the status of another.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

type checkResult struct {
	path string
	prog *program.Program
	err  error
}

func runCheck(cmd *cobra.Command, args []string) error {
	// Parallel per-file runs share nothing; results land in an
	// index-addressed slice so the report keeps argument order.
	g, gctx := errgroup.WithContext(cmd.Context())
	results := make([]checkResult, len(args))

	for i, path := range args {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			prog, err := loader.New(logger).Load(path)
			results[i] = checkResult{path: path, prog: prog, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Printf("%s %s: %v\n", paint(errorStyle, "FAIL"), r.path, r.err)
			continue
		}
		fmt.Printf("%s %s: %s\n", paint(successStyle, "ok"), r.path, summarize(r.prog))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(args))
	}
	return nil
}
