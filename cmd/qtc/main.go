// Command qtc compresses square grayscale images into .qtc files and back.
//
//	qtc encode [-a alpha] [-g] [-z] [--fit] [-o out.qtc] input.pgm...
//	qtc decode [-g] [-o out.pgm] input.qtc...
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/svanichkin/qtc"
)

type options struct {
	output  string
	alpha   float64
	grid    bool
	zstd    bool
	fit     bool
	verbose bool

	now func() time.Time
}

// summary describes one processed file for the -v report.
type summary struct {
	in, out string
	width   int
	bytes   int
	ratio   float64
	grid    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := &options{now: time.Now}

	root := &cobra.Command{
		Use:          "qtc",
		Short:        "Quadtree compression for square grayscale images",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if o.verbose {
				qtc.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
	}
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "print statistics and debug logs")
	root.PersistentFlags().StringVarP(&o.output, "output", "o", "", "output file (single input only)")
	root.PersistentFlags().BoolVarP(&o.grid, "grid", "g", false, "also write the segmentation grid as <output>_g.pgm")

	enc := &cobra.Command{
		Use:   "encode input...",
		Short: "Encode PGM (or PNG, JPEG, GIF, BMP, TIFF) images into .qtc files",
		Long: `Encode images into .qtc files.

Alpha controls lossy filtering:
  alpha <= 1.0  no visible loss, little extra gain
  alpha ~  1.5  moderate filtering, reasonable gain
  alpha >= 2.0  aggressive filtering, visibly degraded image`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.alpha < 0 {
				return fmt.Errorf("alpha must be >= 0, got %g", o.alpha)
			}
			return run(cmd, o, args, ".qtc", encodeFile)
		},
	}
	enc.Flags().Float64VarP(&o.alpha, "alpha", "a", 0, "lossy filtering strength (0 = lossless)")
	enc.Flags().BoolVarP(&o.zstd, "zstd", "z", false, "zstd-compress the bitstream (Q2 container)")
	enc.Flags().BoolVar(&o.fit, "fit", false, "resample non-PGM inputs to the nearest power-of-two square")

	dec := &cobra.Command{
		Use:   "decode input...",
		Short: "Decode .qtc files into PGM (or PNG when -o ends with .png) images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args, ".pgm", decodeFile)
		},
	}

	root.AddCommand(enc, dec)
	return root
}

type processFunc func(in, out string, o *options) (summary, error)

// run processes every input concurrently, one pipeline per file.
func run(cmd *cobra.Command, o *options, args []string, ext string, fn processFunc) error {
	inputs := lo.Uniq(args)
	if o.output != "" && len(inputs) > 1 {
		return fmt.Errorf("-o needs a single input, got %d", len(inputs))
	}

	outputs := lo.Map(inputs, func(in string, _ int) string {
		if o.output != "" {
			return o.output
		}
		return strings.TrimSuffix(in, filepath.Ext(in)) + ext
	})
	if dup := lo.FindDuplicates(outputs); len(dup) > 0 {
		return fmt.Errorf("several inputs map to %s", strings.Join(dup, ", "))
	}

	results := make([]summary, len(inputs))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, in := range inputs {
		g.Go(func() error {
			s, err := fn(in, outputs[i], o)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if o.verbose {
		p := message.NewPrinter(language.English)
		for _, s := range results {
			p.Fprintf(cmd.OutOrStdout(), "%s -> %s: %dx%d, %d bytes (%.2f%%)\n",
				s.in, s.out, s.width, s.width, s.bytes, s.ratio)
			if s.grid != "" {
				p.Fprintf(cmd.OutOrStdout(), "segmentation grid: %s\n", s.grid)
			}
		}
	}
	return nil
}

func gridPath(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + "_g.pgm"
}
