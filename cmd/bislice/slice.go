package main

import (
	"context"
	"fmt"

	"github.com/born-ml/bislice/bilateral"
	"github.com/born-ml/bislice/internal/imageio"
	"github.com/born-ml/bislice/internal/serialization"
	"github.com/urfave/cli/v3"
)

func sliceCmd() *cli.Command {
	var (
		inPath      string
		outPath     string
		guideImages []string
		outImage    string
		width       int
		height      int
		half        bool
	)

	return &cli.Command{
		Name:  "slice",
		Usage: "Sample a bilateral grid at every pixel of a guide",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "in",
				Aliases:     []string{"i"},
				Usage:       "SafeTensors file with \"grid\" (and \"guide\" unless --guide-image is given)",
				Destination: &inPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "SafeTensors file to write \"output\" to",
				Destination: &outPath,
				Required:    true,
			},
			&cli.StringSliceFlag{
				Name:        "guide-image",
				Usage:       "read the guide from image luminance, one image per batch entry (repeat the flag)",
				Destination: &guideImages,
			},
			&cli.IntFlag{Name: "width", Usage: "resize the guide image to this width", Destination: &width},
			&cli.IntFlag{Name: "height", Usage: "resize the guide image to this height", Destination: &height},
			&cli.StringFlag{Name: "out-image", Usage: "also save the first output of the batch as an image", Destination: &outImage},
			&cli.BoolFlag{Name: "half", Usage: "store the output as F16", Destination: &half},
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
			grid, ok := tensors[serialization.NameGrid]
			if !ok {
				return fmt.Errorf("%s: %w: %q", inPath, serialization.ErrNotFound, serialization.NameGrid)
			}

			guide := tensors[serialization.NameGuide]
			if len(guideImages) > 0 {
				guide, err = imageio.LoadGuides(guideImages, imageio.Options{Width: width, Height: height})
				if err != nil {
					return err
				}
			}
			if guide == nil {
				return fmt.Errorf("%s: %w: %q (or pass --guide-image)", inPath, serialization.ErrNotFound, serialization.NameGuide)
			}

			e.log.Info("slice",
				"grid", grid.Shape(),
				"guide", guide.Shape(),
				"backend", e.backend.Name(),
			)

			out, err := bilateral.SliceContext(ctx, e.backend, grid, guide)
			if err != nil {
				return err
			}

			if err := serialization.WriteFile(outPath, map[string]*bilateral.RawTensor{
				serialization.NameOutput: out,
			}, map[string]string{"source": inPath}, writerOptions(half)...); err != nil {
				return err
			}
			if outImage != "" {
				if err := imageio.SaveOutput(out, 0, outImage); err != nil {
					return err
				}
			}

			e.log.Info("wrote output", "path", outPath, "shape", out.Shape())
			return nil
		},
	}
}

func writerOptions(half bool) []serialization.WriterOption {
	if half {
		return []serialization.WriterOption{serialization.WithHalfPrecision()}
	}
	return nil
}
