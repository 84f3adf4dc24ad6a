package tensor

// Backend defines the interface that all compute backends must implement.
// Backends allocate outputs and run the bilateral slice kernels on their
// device.
//
// Implementations:
//   - CPU: pure Go kernels on a goroutine launcher
//   - WebGPU: WGSL compute shaders (windows)
type Backend interface {
	// BilateralSlice samples grid [C, D, Gw, Gh, B] at every pixel of
	// guide [W, H, B] and returns the output [C, W, H, B].
	BilateralSlice(grid, guide *RawTensor) (*RawTensor, error)

	// BilateralSliceGrad returns the gradients with respect to the grid and
	// the guide given the codomain tangent [C, W, H, B].
	BilateralSliceGrad(grid, guide, codomainTangent *RawTensor) (gridGrad, guideGrad *RawTensor, err error)

	// Metadata
	Name() string
	Device() Device
}
