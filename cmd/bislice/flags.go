package main

import "github.com/urfave/cli/v3"

var (
	configFile string
	backend    string
	workers    int
	logLevel   string
	logFormat  string
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: user config dir)",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "compute backend (cpu, webgpu)",
			Value:       "cpu",
			Destination: &backend,
		},
		&cli.IntFlag{
			Name:        "workers",
			Usage:       "CPU worker goroutines (0 = one per CPU)",
			Destination: &workers,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (text, json)",
			Value:       "text",
			Destination: &logFormat,
		},
	}
}
