// Package config loads the bislice configuration file.
//
// The file is YAML, by default at $XDG_CONFIG_HOME/bislice/config.yaml
// (os.UserConfigDir). Every field is optional; missing fields keep their
// defaults.
//
//	backend: cpu          # cpu | webgpu
//	workers: 0            # 0 = one per CPU
//	threads_per_block: 256
//	min_chunk_size: 64    # below this many units, run sequentially
//	log_level: info
//	log_format: text      # text | json
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/born-ml/bislice/internal/parallel"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendCPU    = "cpu"
	BackendWebGPU = "webgpu"
)

// Config represents the bislice configuration file.
type Config struct {
	Backend         string `yaml:"backend"`
	Workers         int    `yaml:"workers"`
	ThreadsPerBlock int    `yaml:"threads_per_block"`
	MinChunkSize    int    `yaml:"min_chunk_size"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend:         BackendCPU,
		Workers:         0,
		ThreadsPerBlock: parallel.DefaultThreadsPerBlock,
		MinChunkSize:    parallel.DefaultConfig().MinChunkSize,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// DefaultPath returns the default config file location, or "" when the
// user config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bislice", "config.yaml")
}

// Load reads the config file at path on top of the defaults. An empty path
// means DefaultPath. A missing file yields the defaults; an unreadable or
// invalid one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: config path is user supplied
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Backend) {
	case BackendCPU, BackendWebGPU:
	default:
		errs = append(errs, fmt.Errorf("backend %q: want %s or %s", c.Backend, BackendCPU, BackendWebGPU))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d: must not be negative", c.Workers))
	}
	if c.ThreadsPerBlock < 1 {
		errs = append(errs, fmt.Errorf("threads_per_block %d: must be at least 1", c.ThreadsPerBlock))
	}
	if c.MinChunkSize < 0 {
		errs = append(errs, fmt.Errorf("min_chunk_size %d: must not be negative", c.MinChunkSize))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level %q: want debug, info, warn or error", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q: want text or json", c.LogFormat))
	}

	return errors.Join(errs...)
}

// Parallel returns the launcher configuration. One worker disables
// parallel execution.
func (c Config) Parallel() parallel.Config {
	cfg := parallel.DefaultConfig()
	workers := c.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	cfg.NumWorkers = workers
	cfg.Enabled = workers > 1
	cfg.ThreadsPerBlock = c.ThreadsPerBlock
	cfg.MinChunkSize = c.MinChunkSize
	return cfg
}
