package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/born-ml/bislice/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Launcher runs kernels over a 1D index space and tracks device status.
//
// Every unit index in [0, count) is passed to the kernel exactly once. A
// panic inside a unit marks the launcher as failed; OK reports the aggregate
// status of every launch since the last Reset. A Launcher is safe for
// concurrent launches.
type Launcher struct {
	cfg Config
	log logger.Logger

	mu  sync.Mutex
	err error
}

// NewLauncher creates a launcher. A nil logger discards output.
func NewLauncher(cfg Config, log logger.Logger) *Launcher {
	if log == nil {
		log = logger.Discard()
	}
	return &Launcher{cfg: cfg, log: log}
}

// Config returns the launcher's configuration.
func (l *Launcher) Config() Config {
	return l.cfg
}

// Launch runs kernel for every index in [0, count).
func (l *Launcher) Launch(name string, count int, kernel func(idx int)) {
	l.LaunchContext(context.Background(), name, count, kernel)
}

// LaunchContext is Launch with cancellation: once ctx is done no further
// blocks start and the launch is reported as failed.
func (l *Launcher) LaunchContext(ctx context.Context, name string, count int, kernel func(idx int)) {
	lc := LaunchConfigFor(count, l.cfg)
	if lc.BlockCount == 0 {
		return
	}

	if lc.BlockCount == 1 {
		if err := ctx.Err(); err != nil {
			l.fail(name, err)
			return
		}
		if err := runBlock(name, 0, count, lc, kernel); err != nil {
			l.fail(name, err)
		}
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.cfg.NumWorkers, 1))
	skipped := false
	for block := 0; block < lc.BlockCount; block++ {
		if gctx.Err() != nil {
			skipped = true
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return runBlock(name, block, count, lc, kernel)
		})
	}

	// A context cancelled after every block started leaves a complete result.
	err := g.Wait()
	if err == nil && skipped {
		err = ctx.Err()
	}
	if err != nil {
		l.fail(name, err)
	}
}

// runBlock executes one block's grid-stride loop.
func runBlock(name string, block, count int, lc LaunchConfig, kernel func(idx int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: block %d: %v", name, block, r)
		}
	}()

	stride := lc.Stride()
	for base := block * lc.ThreadsPerBlock; base < count; base += stride {
		end := min(base+lc.ThreadsPerBlock, count)
		for idx := base; idx < end; idx++ {
			kernel(idx)
		}
	}
	return nil
}

func (l *Launcher) fail(name string, err error) {
	l.log.Error("kernel launch failed", "kernel", name, "error", err)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = errors.Join(l.err, err)
}

// OK reports whether every launch since the last Reset completed.
func (l *Launcher) OK() bool {
	return l.Err() == nil
}

// Err returns the accumulated launch errors, or nil.
func (l *Launcher) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Reset clears the device status.
func (l *Launcher) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = nil
}
