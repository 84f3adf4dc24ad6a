//go:build windows

package webgpu

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/born-ml/bislice/internal/logger"
	"github.com/born-ml/bislice/internal/tensor"
	"github.com/born-ml/bislice/internal/validate"
	"github.com/go-webgpu/webgpu/wgpu"
)

// Backend runs the bilateral slice kernels as WGSL compute shaders.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	// Serializes submissions on the shared queue.
	runMu sync.Mutex

	adapterInfo *wgpu.AdapterInfoGo
	log         logger.Logger
}

// New creates a WebGPU backend. It returns an error wrapping ErrUnavailable
// if the native library or a GPU adapter is missing. A nil logger discards
// output.
func New(log logger.Logger) (backend *Backend, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("%w: native library not available: %v", ErrUnavailable, r)
		}
	}()

	if log == nil {
		log = logger.Discard()
	}

	instance, instanceErr := wgpu.CreateInstance(nil)
	if instanceErr != nil {
		return nil, fmt.Errorf("%w: failed to create instance: %w", ErrUnavailable, instanceErr)
	}
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request adapter: %w", ErrUnavailable, adapterErr)
	}
	adapterInfo, infoErr := adapter.GetInfo()
	if infoErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to query adapter: %w", ErrUnavailable, infoErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to request device: %w", ErrUnavailable, deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: failed to get queue", ErrUnavailable)
	}

	return &Backend{
		instance:    instance,
		adapter:     adapter,
		device:      device,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*wgpu.ComputePipeline),
		adapterInfo: adapterInfo,
		log:         log.With("backend", "webgpu"),
	}, nil
}

// Release releases all WebGPU resources.
// Must be called when the backend is no longer needed.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	b.pipelines = nil
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// AdapterName describes the GPU adapter in use.
func (b *Backend) AdapterName() string {
	if b.adapterInfo == nil {
		return ""
	}
	return adapterName(b.adapterInfo)
}

// BilateralSlice samples grid at every guide pixel on the GPU.
func (b *Backend) BilateralSlice(grid, guide *tensor.RawTensor) (out *tensor.RawTensor, err error) {
	defer recoverLaunch("bilateral slice", &err)

	if err := validate.Slice(grid, guide); err != nil {
		return nil, fmt.Errorf("bilateral slice: %w", err)
	}
	p := paramsFor(grid.Shape(), guide.Shape())
	p.units = p.channels * p.guideWidth * p.guideHeight * p.batch

	out, err = tensor.NewRaw(validate.OutputShape(grid.Shape(), guide.Shape()), tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, fmt.Errorf("bilateral slice: failed to create result tensor: %w", err)
	}
	if p.units == 0 {
		return out, nil
	}

	b.runMu.Lock()
	defer b.runMu.Unlock()

	data, err := b.runKernel("bilateral_slice", sliceShader,
		[][]byte{grid.Data(), guide.Data()}, out.ByteSize(), p)
	if err != nil {
		return nil, fmt.Errorf("bilateral slice: %w", err)
	}
	copy(out.Data(), data)
	return out, nil
}

// BilateralSliceGrad computes the grid and guide gradients on the GPU.
func (b *Backend) BilateralSliceGrad(grid, guide, codomainTangent *tensor.RawTensor) (gridGrad, guideGrad *tensor.RawTensor, err error) {
	defer recoverLaunch("bilateral slice grad", &err)

	if err := validate.SliceGrad(grid, guide, codomainTangent); err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: %w", err)
	}
	p := paramsFor(grid.Shape(), guide.Shape())

	gridGrad, err = tensor.NewRaw(grid.Shape(), tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: failed to create grid gradient: %w", err)
	}
	guideGrad, err = tensor.NewRaw(guide.Shape(), tensor.Float32, tensor.WebGPU)
	if err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: failed to create guide gradient: %w", err)
	}

	b.runMu.Lock()
	defer b.runMu.Unlock()

	gp := p
	gp.units = gridGrad.NumElements()
	data, err := b.runKernel("bilateral_slice_grid_grad", gridGradShader,
		[][]byte{guide.Data(), codomainTangent.Data()}, gridGrad.ByteSize(), gp)
	if err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: %w", err)
	}
	copy(gridGrad.Data(), data)

	if guideGrad.NumElements() == 0 {
		return gridGrad, guideGrad, nil
	}
	pp := p
	pp.units = guideGrad.NumElements()
	data, err = b.runKernel("bilateral_slice_guide_grad", guideGradShader,
		[][]byte{grid.Data(), guide.Data(), codomainTangent.Data()}, guideGrad.ByteSize(), pp)
	if err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: %w", err)
	}
	copy(guideGrad.Data(), data)

	return gridGrad, guideGrad, nil
}

// adapterName joins the non-empty vendor, device and description strings.
func adapterName(info *wgpu.AdapterInfoGo) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{info.Vendor, info.Device, info.Description} {
		if s != "" && !slices.Contains(parts, s) {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func paramsFor(grid, guide tensor.Shape) params {
	return params{
		channels:    grid[0],
		depth:       grid[1],
		gridWidth:   grid[2],
		gridHeight:  grid[3],
		guideWidth:  guide[0],
		guideHeight: guide[1],
		batch:       guide[2],
	}
}

// recoverLaunch turns a panic raised by the native bindings into an error.
func recoverLaunch(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s: %w: %v", op, ErrLaunch, r)
	}
}
