package main

import (
	"context"
	"fmt"

	"github.com/born-ml/bislice/bilateral"
	"github.com/born-ml/bislice/internal/serialization"
	"github.com/born-ml/bislice/internal/validate"
	"github.com/urfave/cli/v3"
)

func gradCmd() *cli.Command {
	var (
		inPath  string
		outPath string
		half    bool
	)

	return &cli.Command{
		Name:  "grad",
		Usage: "Compute the grid and guide gradients for a codomain tangent",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "SafeTensors file with \"grid\", \"guide\" and \"tangent\"",
				Destination: &inPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "SafeTensors file to write \"grid_grad\" and \"guide_grad\" to",
				Destination: &outPath,
				Required:    true,
			},
			&cli.BoolFlag{Name: "half", Usage: "store the gradients as F16", Destination: &half},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			defer e.Close()

			tensors, err := serialization.ReadFile(inPath)
			if err != nil {
				return err
			}
			for _, name := range []string{serialization.NameGrid, serialization.NameGuide} {
				if _, ok := tensors[name]; !ok {
					return fmt.Errorf("%s: %w: %q", inPath, serialization.ErrNotFound, name)
				}
			}
			grid, guide := tensors[serialization.NameGrid], tensors[serialization.NameGuide]

			if err := validate.Slice(grid, guide); err != nil {
				return fmt.Errorf("%s: %w", inPath, err)
			}
			tangent, ok := tensors[serialization.NameTangent]
			if !ok {
				e.log.Warn("no tangent in input, using ones", "path", inPath)
				tangent, err = bilateral.Full(bilateral.OutputShape(grid.Shape(), guide.Shape()), 1)
				if err != nil {
					return err
				}
			}

			e.log.Info("grad",
				"grid", grid.Shape(),
				"guide", guide.Shape(),
				"backend", e.backend.Name(),
			)

			gridGrad, guideGrad, err := bilateral.SliceGradContext(ctx, e.backend, grid, guide, tangent)
			if err != nil {
				return err
			}

			if err := serialization.WriteFile(outPath, map[string]*bilateral.RawTensor{
				serialization.NameGridGrad:  gridGrad,
				serialization.NameGuideGrad: guideGrad,
			}, map[string]string{"source": inPath}, writerOptions(half)...); err != nil {
				return err
			}

			e.log.Info("wrote gradients", "path", outPath)
			return nil
		},
	}
}
