// Package parallel provides the data-parallel launcher that runs kernels
// over a 1D index space.
package parallel

import "runtime"

// DefaultThreadsPerBlock is the number of consecutive units a block handles
// per grid stride.
const DefaultThreadsPerBlock = 256

// defaultBlocksPerWorker bounds how many blocks are created per worker, so
// large launches fall back to grid-stride loops instead of tiny goroutines.
const defaultBlocksPerWorker = 4

// Config controls parallel execution behavior.
type Config struct {
	Enabled         bool // Whether parallel execution is enabled.
	NumWorkers      int  // Number of worker goroutines to use.
	MinChunkSize    int  // Launches smaller than this run on a single block.
	ThreadsPerBlock int  // Units per block per grid stride.
	BlocksPerWorker int  // Upper bound on blocks per worker.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:         n > 1,
		NumWorkers:      n,
		MinChunkSize:    64, // Typical cache line aware chunk.
		ThreadsPerBlock: DefaultThreadsPerBlock,
		BlocksPerWorker: defaultBlocksPerWorker,
	}
}

// Sequential returns a configuration that runs every launch on one block.
func Sequential() Config {
	cfg := DefaultConfig()
	cfg.Enabled = false
	cfg.NumWorkers = 1
	return cfg
}

// LaunchConfig partitions a 1D index space into blocks.
// Block b starts at b*ThreadsPerBlock and advances by Stride() until the
// index space is exhausted.
type LaunchConfig struct {
	BlockCount      int
	ThreadsPerBlock int
}

// Stride returns the grid stride: the number of units covered by one pass
// over all blocks.
func (lc LaunchConfig) Stride() int {
	return lc.BlockCount * lc.ThreadsPerBlock
}

// LaunchConfigFor returns the partitioning used for count units.
// An empty launch has zero blocks.
func LaunchConfigFor(count int, cfg Config) LaunchConfig {
	if count <= 0 {
		return LaunchConfig{}
	}

	threads := cfg.ThreadsPerBlock
	if threads <= 0 {
		threads = DefaultThreadsPerBlock
	}

	if !cfg.Enabled || count < cfg.MinChunkSize {
		return LaunchConfig{BlockCount: 1, ThreadsPerBlock: min(threads, count)}
	}

	perWorker := cfg.BlocksPerWorker
	if perWorker <= 0 {
		perWorker = defaultBlocksPerWorker
	}
	blocks := (count + threads - 1) / threads
	blocks = min(blocks, max(cfg.NumWorkers, 1)*perWorker)

	return LaunchConfig{BlockCount: blocks, ThreadsPerBlock: threads}
}
