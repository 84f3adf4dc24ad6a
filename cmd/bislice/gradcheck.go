package main

import (
	"context"
	"fmt"

	"github.com/born-ml/bislice/internal/gradcheck"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// maxListedMismatches caps how many failing elements are printed.
const maxListedMismatches = 10

func gradcheckCmd() *cli.Command {
	var (
		seed      int
		shape     string
		tolerance float64
		maxChecks int
		quiet     bool
	)
	defaults := gradcheck.DefaultOptions()

	return &cli.Command{
		Name:  "gradcheck",
		Usage: "Compare analytic gradients with finite differences on random inputs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "seed", Usage: "random seed", Value: int(defaults.Seed), Destination: &seed},
			&cli.StringFlag{
				Name:        "shape",
				Usage:       "problem size C,D,Gw,Gh,W,H,B",
				Value:       "2,4,3,3,9,7,1",
				Destination: &shape,
			},
			&cli.FloatFlag{Name: "tolerance", Usage: "largest accepted absolute error", Value: defaults.Tolerance, Destination: &tolerance},
			&cli.IntFlag{Name: "max-checks", Usage: "elements checked per tensor (0 = all)", Destination: &maxChecks},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "hide the progress bar", Destination: &quiet},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.Close()

			dims, err := gradcheck.ParseDims(shape)
			if err != nil {
				return err
			}

			opts := defaults
			opts.Seed = uint64(seed) //nolint:gosec // G115: any bit pattern is a valid seed
			opts.Tolerance = tolerance
			opts.MaxChecks = maxChecks

			var bar *progressbar.ProgressBar
			opts.Progress = func(done, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetWriter(errWriter(c)),
						progressbar.OptionSetDescription("gradcheck "+dims.String()),
						progressbar.OptionSetVisibility(!quiet),
						progressbar.OptionShowCount(),
						progressbar.OptionClearOnFinish(),
					)
				}
				_ = bar.Set(done)
			}

			e.log.Info("gradcheck", "dims", dims.String(), "seed", opts.Seed, "backend", e.backend.Name())
			report, err := gradcheck.Run(ctx, e.backend, dims, opts)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			w := writer(c)
			_, _ = fmt.Fprintf(w, "dims:           %s\n", report.Dims)
			_, _ = fmt.Fprintf(w, "checked:        %d\n", report.Checked)
			_, _ = fmt.Fprintf(w, "max grid err:   %.3g\n", report.MaxGridErr)
			_, _ = fmt.Fprintf(w, "max guide err:  %.3g\n", report.MaxGuideErr)
			for i, m := range report.Mismatches {
				if i == maxListedMismatches {
					_, _ = fmt.Fprintf(w, "  ... %d more\n", len(report.Mismatches)-i)
					break
				}
				_, _ = fmt.Fprintf(w, "  %s[%d]: analytic %.6g numeric %.6g\n", m.Tensor, m.Index, m.Analytic, m.Numeric)
			}

			if !report.OK() {
				return fmt.Errorf("gradcheck: %d of %d elements exceed tolerance %g",
					len(report.Mismatches), report.Checked, opts.Tolerance)
			}
			_, _ = fmt.Fprintln(w, "ok")
			return nil
		},
	}
}
