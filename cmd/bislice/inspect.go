package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/born-ml/bislice/internal/serialization"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

func inspectCmd() *cli.Command {
	var checksums bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "List the tensors in a SafeTensors file",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "checksum", Usage: "print a SHA-256 prefix of each tensor's data", Destination: &checksums},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx

			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("inspect: missing FILE argument")
			}

			r, err := serialization.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			out := writer(c)
			if md := r.Metadata(); len(md) > 0 {
				keys := make([]string, 0, len(md))
				for k := range md {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					_, _ = fmt.Fprintf(out, "%s: %s\n", k, md[k])
				}
				_, _ = fmt.Fprintln(out)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			header := "NAME\tDTYPE\tSHAPE\tELEMENTS\tSIZE"
			if checksums {
				header += "\tSHA256"
			}
			_, _ = fmt.Fprintln(tw, header)

			var total int64
			for _, meta := range r.Tensors() {
				total += meta.Size
				line := fmt.Sprintf("%s\t%s\t%v\t%s\t%s",
					meta.Name,
					meta.DType,
					meta.Shape,
					humanize.Comma(int64(meta.NumElements())),
					humanize.Bytes(uint64(meta.Size)), //nolint:gosec // G115: sizes are validated non-negative
				)
				if checksums {
					sum, err := r.Checksum(meta.Name)
					if err != nil {
						return err
					}
					line += "\t" + hex.EncodeToString(sum[:8])
				}
				_, _ = fmt.Fprintln(tw, line)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "\n%d tensors, %s\n", len(r.Tensors()), humanize.Bytes(uint64(total))) //nolint:gosec // G115: non-negative
			return nil
		},
	}
}
