package autodiff

import (
	"fmt"

	"github.com/born-ml/bislice/internal/tensor"
)

// BackwardCapable is a backend that owns a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape returns the tape slices are recorded on.
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward returns the gradients of sum(output * codomainTangent) with
// respect to every grid and guide recorded on the backend's tape. A nil
// codomainTangent means all ones. It panics if nothing was recorded.
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	out, _ := backend.BilateralSlice(grid, guide)
//	gridGrad := autodiff.Backward(out, nil, backend)[grid]
func Backward[B BackwardCapable](output, codomainTangent *tensor.RawTensor, backend B) Gradients {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("autodiff: backward on an empty tape (StartRecording was not called before the slice)")
	}

	if codomainTangent == nil {
		ones, err := tensor.Full(output.Shape(), 1, backend.Device())
		if err != nil {
			panic(fmt.Sprintf("autodiff: ones tangent for %v: %v", output.Shape(), err))
		}
		codomainTangent = ones
	}
	return tape.BackwardFrom(Gradients{output: codomainTangent}, backend)
}
