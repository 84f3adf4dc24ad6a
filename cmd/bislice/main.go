// Package main provides the bislice CLI: bilateral slice forward and
// backward passes over SafeTensors files.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "bislice",
		Usage: "Bilateral grid slicing and its gradients",
		Flags: globalFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			sliceCmd(),
			gradCmd(),
			gradcheckCmd(),
			inspectCmd(),
			versionCmd(),
		},
	}
}
