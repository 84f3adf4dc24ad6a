package autodiff

import (
	"fmt"
	"maps"

	"github.com/born-ml/bislice/internal/autodiff/ops"
	"github.com/born-ml/bislice/internal/tensor"
)

// Gradients maps a tensor seen on the tape to dL/d(tensor).
type Gradients = map[*tensor.RawTensor]*tensor.RawTensor

// GradientTape is an append-only log of the slices run while recording.
// Walking it backwards turns a tangent on the final output into
// gradients on every grid and guide that fed it.
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	tape.Record(ops.NewBilateralSliceOp(grid, guide, out))
//	grads := tape.Backward(tangent, backend)
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

// NewGradientTape returns an empty tape that is not recording.
func NewGradientTape() *GradientTape {
	return &GradientTape{operations: make([]ops.Operation, 0, 8)}
}

// StartRecording makes Record append operations.
func (t *GradientTape) StartRecording() { t.recording = true }

// StopRecording makes Record a no-op.
func (t *GradientTape) StopRecording() { t.recording = false }

// IsRecording reports whether Record currently appends.
func (t *GradientTape) IsRecording() bool { return t.recording }

// Record appends op while the tape is recording.
func (t *GradientTape) Record(op ops.Operation) {
	if !t.recording {
		return
	}
	t.operations = append(t.operations, op)
}

// Clear drops every recorded operation and keeps the recording state, so a
// training loop can reuse one tape per step.
func (t *GradientTape) Clear() {
	clear(t.operations)
	t.operations = t.operations[:0]
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward seeds the output of the most recent operation with outputGrad
// and propagates it through the tape. An empty tape yields no gradients.
func (t *GradientTape) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) Gradients {
	if len(t.operations) == 0 {
		return Gradients{}
	}
	last := t.operations[len(t.operations)-1].Output()
	return t.BackwardFrom(Gradients{last: outputGrad}, backend)
}

// BackwardFrom propagates several seeded outputs at once. Operations whose
// output never received a gradient are skipped; a tensor consumed by more
// than one slice receives the sum of its gradients. The seeds map is not
// modified.
func (t *GradientTape) BackwardFrom(seeds Gradients, backend tensor.Backend) Gradients {
	wasRecording := t.recording
	t.recording = false
	defer func() { t.recording = wasRecording }()

	grads := maps.Clone(seeds)
	if grads == nil {
		grads = Gradients{}
	}
	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		g, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(g, backend)
		for j, in := range op.Inputs() {
			if j < len(inputGrads) && inputGrads[j] != nil {
				accumulate(grads, in, inputGrads[j])
			}
		}
	}
	return grads
}

func accumulate(grads Gradients, in, g *tensor.RawTensor) {
	prev, ok := grads[in]
	if !ok {
		grads[in] = g
		return
	}
	if !prev.Shape().Equal(g.Shape()) {
		panic(fmt.Sprintf("autodiff: gradient shapes %v and %v of one tensor differ", prev.Shape(), g.Shape()))
	}
	sum := prev.Clone()
	dst := sum.AsFloat32()
	for i, v := range g.AsFloat32() {
		dst[i] += v
	}
	grads[in] = sum
}
