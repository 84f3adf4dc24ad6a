// Package cpu implements the CPU backend: the bilateral slice kernels run on
// a goroutine launcher that partitions each 1D index space into blocks.
package cpu

import (
	"context"
	"errors"
	"fmt"

	"github.com/born-ml/bislice/internal/logger"
	"github.com/born-ml/bislice/internal/parallel"
	"github.com/born-ml/bislice/internal/tensor"
)

// ErrLaunch reports that a kernel launch did not complete.
var ErrLaunch = errors.New("kernel launch failed")

// CPUBackend runs the bilateral slice kernels on CPU.
//
// Arguments are expected to have passed validate.Slice or validate.SliceGrad.
// A CPUBackend is safe for concurrent use; every call gets its own launcher.
type CPUBackend struct {
	device tensor.Device
	cfg    parallel.Config
	log    logger.Logger
}

// New creates a CPU backend with the default parallel configuration.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig(), nil)
}

// NewWithConfig creates a CPU backend with an explicit parallel
// configuration. A nil logger discards output.
func NewWithConfig(cfg parallel.Config, log logger.Logger) *CPUBackend {
	if log == nil {
		log = logger.Discard()
	}
	return &CPUBackend{
		device: tensor.CPU,
		cfg:    cfg,
		log:    log.With("backend", "cpu"),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Config returns the parallel configuration used for launches.
func (cpu *CPUBackend) Config() parallel.Config {
	return cpu.cfg
}

// BilateralSlice samples grid at every guide pixel.
func (cpu *CPUBackend) BilateralSlice(grid, guide *tensor.RawTensor) (*tensor.RawTensor, error) {
	return cpu.BilateralSliceContext(context.Background(), grid, guide)
}

// BilateralSliceGrad computes the grid and guide gradients for the given
// codomain tangent.
func (cpu *CPUBackend) BilateralSliceGrad(grid, guide, codomainTangent *tensor.RawTensor) (gridGrad, guideGrad *tensor.RawTensor, err error) {
	return cpu.BilateralSliceGradContext(context.Background(), grid, guide, codomainTangent)
}

func (cpu *CPUBackend) newDevice(ctx context.Context) *contextDevice {
	return &contextDevice{
		ctx:      ctx,
		Launcher: parallel.NewLauncher(cpu.cfg, cpu.log),
		log:      cpu.log,
	}
}

// contextDevice adapts a parallel.Launcher to kernels.Device, threading a
// context into every launch.
type contextDevice struct {
	ctx context.Context
	*parallel.Launcher
	log logger.Logger
}

// Launch runs kernel over [0, count) unless the context is done.
func (d *contextDevice) Launch(name string, count int, kernel func(idx int)) {
	lc := parallel.LaunchConfigFor(count, d.Config())
	d.log.Debug("launch",
		"kernel", name,
		"units", count,
		"blocks", lc.BlockCount,
		"threads_per_block", lc.ThreadsPerBlock,
	)
	d.LaunchContext(d.ctx, name, count, kernel)
}

// status converts the device status into an error.
func (d *contextDevice) status(op string) error {
	if err := d.Err(); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrLaunch, err)
	}
	return nil
}
