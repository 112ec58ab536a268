package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/pkg/codec"
	"github.com/ulikoehler/slinktree/pkg/model"
	"github.com/ulikoehler/slinktree/pkg/pipeline"
	"github.com/ulikoehler/slinktree/pkg/source"
)

// benchResult collects timings for one bench run.
type benchResult struct {
	resolve, save, load []time.Duration
	sourceBytes         int64
	containerBytes      int64
	doc                 *model.SystemDoc
}

// benchCommand creates the bench command.
func (c *CLI) benchCommand() *cobra.Command {
	var (
		flags loadFlags
		runs  int
		xz    bool
	)

	cmd := &cobra.Command{
		Use:   "bench <file>",
		Short: "Compare XML resolution with binary container loading",
		Long: `Compare XML resolution with binary container loading.

Each run resolves the model from its XML sources with all caches bypassed,
writes a binary container to a temporary directory and loads it back. The
minimum and mean of each phase are reported.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeModelFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runs < 1 {
				return fmt.Errorf("runs must be at least 1, got %d", runs)
			}
			opts := flags.options(cmd, c.Config, args[0])
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			spinner := newSpinner(cmd.Context(), os.Stderr, fmt.Sprintf("Benchmarking %s (%d runs)...", filepath.Base(args[0]), runs))
			spinner.Start()
			res, err := runBench(cmd.Context(), opts, runs, xz)
			if err != nil {
				spinner.StopWithError("Benchmark failed")
				return err
			}
			spinner.Stop()

			printSuccess("Benchmarked %s", args[0])
			printKeyValue("Files", fmt.Sprintf("%d", len(res.doc.Sources)))
			printKeyValue("XML", formatBytes(res.sourceBytes))
			printKeyValue("Container", formatBytes(res.containerBytes))
			printKeyValue("Resolve", formatTimings(res.resolve))
			printKeyValue("Save", formatTimings(res.save))
			printKeyValue("Load", formatTimings(res.load))
			if m := mean(res.load); m > 0 {
				printDetail("Container loads %.1fx faster than XML resolution", float64(mean(res.resolve))/float64(m))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&runs, "runs", "n", 5, "number of runs")
	cmd.Flags().BoolVar(&xz, "xz", false, "benchmark the xz-compressed container")
	cmd.Flags().IntVarP(&flags.workers, "workers", "j", 0, "parallel file parsers (default from config)")
	cmd.Flags().BoolVar(&flags.inferPorts, "infer-ports", false, "add undeclared ports referenced by lines")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "resolution deadline (default from config)")

	return cmd
}

func runBench(ctx context.Context, opts pipeline.Options, runs int, xz bool) (*benchResult, error) {
	isContainer, err := codec.Sniff(opts.Input)
	if err != nil {
		return nil, err
	}
	if isContainer {
		return nil, fmt.Errorf("%s is already a binary container", opts.Input)
	}

	dir, err := os.MkdirTemp("", appName+"-bench-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "model"+containerExt)
	if xz {
		out += codec.CompressedExt
	}

	res := &benchResult{}
	for i := 0; i < runs; i++ {
		in, err := source.Open(opts.Input)
		if err != nil {
			return nil, err
		}
		start := time.Now()
		doc, err := pipeline.Resolve(ctx, in, opts)
		in.Close()
		if err != nil {
			return nil, err
		}
		res.resolve = append(res.resolve, time.Since(start))
		res.doc = doc

		start = time.Now()
		size, err := pipeline.SaveBinary(ctx, out, doc)
		if err != nil {
			return nil, err
		}
		res.save = append(res.save, time.Since(start))
		res.containerBytes = size

		start = time.Now()
		if _, err := pipeline.LoadBinary(ctx, out); err != nil {
			return nil, err
		}
		res.load = append(res.load, time.Since(start))
	}

	in, err := source.Open(opts.Input)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	for _, sf := range res.doc.Sources {
		data, err := in.Source.ReadFile(sf.Path)
		if err != nil {
			return nil, err
		}
		res.sourceBytes += int64(len(data))
	}
	return res, nil
}

func mean(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}

// formatTimings renders "min 1.2ms · mean 1.4ms".
func formatTimings(ds []time.Duration) string {
	if len(ds) == 0 {
		return "-"
	}
	lo := ds[0]
	for _, d := range ds[1:] {
		lo = min(lo, d)
	}
	return fmt.Sprintf("min %s · mean %s", lo.Round(time.Microsecond), mean(ds).Round(time.Microsecond))
}
