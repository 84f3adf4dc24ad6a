package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/born-ml/bislice/bilateral"
	"github.com/born-ml/bislice/internal/config"
	"github.com/born-ml/bislice/internal/logger"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// env is what every command needs: the effective configuration, a logger
// tagged with this invocation's run id, and a backend.
type env struct {
	cfg     config.Config
	log     logger.Logger
	backend bilateral.Backend
	release func()
}

// setup loads the config file, applies flags that were set explicitly on top
// of it and opens the configured backend.
func setup(c *cli.Command) (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	applyFlags(c, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	log := logger.ForFormat(errWriter(c), strings.ToLower(cfg.LogFormat), logger.ParseLevel(strings.ToLower(cfg.LogLevel))).
		With("run", uuid.NewString(), "cmd", c.Name)

	e := &env{cfg: cfg, log: log, release: func() {}}
	switch strings.ToLower(cfg.Backend) {
	case config.BackendWebGPU:
		gpu, err := bilateral.NewWebGPU()
		if err != nil {
			return nil, err
		}
		e.backend = gpu
		e.release = gpu.Release
	default:
		e.backend = bilateral.NewCPUWithLogger(cfg.Parallel(), log)
	}

	log.Debug("setup",
		"backend", e.backend.Name(),
		"workers", cfg.Parallel().NumWorkers,
		"threads_per_block", cfg.ThreadsPerBlock,
	)
	return e, nil
}

// applyFlags overrides config file values with flags the user set.
func applyFlags(c *cli.Command, cfg *config.Config) {
	if c.IsSet("backend") {
		cfg.Backend = backend
	}
	if c.IsSet("workers") {
		cfg.Workers = workers
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = logLevel
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = logFormat
	}
}

func (e *env) Close() {
	e.release()
}

func writer(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(c *cli.Command) io.Writer {
	if w := c.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
