// Package gradcheck compares the analytic bilateral slice gradients of a
// backend against central finite differences of its forward pass.
//
// The loss is L = Σ out·tangent for a random tangent, so the analytic
// gradients are exactly the backend's vector-Jacobian products.
package gradcheck

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/born-ml/bislice/internal/tensor"
)

// Dims is the problem size: grid [C, D, Gw, Gh, B] and guide [W, H, B].
type Dims struct {
	C, D, Gw, Gh, W, H, B int
}

// ParseDims reads "C,D,Gw,Gh,W,H,B".
func ParseDims(s string) (Dims, error) {
	var d Dims
	n, err := fmt.Sscanf(s, "%d,%d,%d,%d,%d,%d,%d", &d.C, &d.D, &d.Gw, &d.Gh, &d.W, &d.H, &d.B)
	if err != nil || n != 7 {
		return Dims{}, fmt.Errorf("dims %q: want C,D,Gw,Gh,W,H,B", s)
	}
	for _, v := range []int{d.C, d.D, d.Gw, d.Gh, d.W, d.H, d.B} {
		if v < 1 {
			return Dims{}, fmt.Errorf("dims %q: every extent must be at least 1", s)
		}
	}
	return d, nil
}

// String formats d the way ParseDims reads it.
func (d Dims) String() string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d,%d", d.C, d.D, d.Gw, d.Gh, d.W, d.H, d.B)
}

// Options controls a check.
type Options struct {
	Seed uint64

	// GridStep is the finite-difference step for grid cells. The output is
	// linear in the grid, so a large step is exact up to rounding.
	GridStep float32
	// GuideStep is the step in depth units (guide·D).
	GuideStep float32

	// Tolerance is the largest accepted |analytic - numeric|.
	Tolerance float64

	// MaxChecks caps the number of elements checked per tensor; 0 checks all.
	MaxChecks int

	// Progress, if set, is called after each checked element.
	Progress func(done, total int)
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Seed:      1,
		GridStep:  0.5,
		GuideStep: 0.01,
		Tolerance: 2e-3,
		MaxChecks: 0,
	}
}

// Mismatch records one element whose gradients disagree.
type Mismatch struct {
	Tensor   string
	Index    int
	Analytic float64
	Numeric  float64
}

// Report summarizes a check.
type Report struct {
	Dims        Dims
	Checked     int
	MaxGridErr  float64
	MaxGuideErr float64
	Mismatches  []Mismatch
}

// OK reports whether every checked element agreed.
func (r Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Inputs holds a random problem instance.
type Inputs struct {
	Grid, Guide, Tangent *tensor.RawTensor
}

// RandomInputs draws a grid and tangent uniform in [-1, 1] and a guide whose
// depth coordinate stays at least 0.1 away from cell centers, including one
// cell beyond each end of the depth axis.
func RandomInputs(d Dims, seed uint64) (Inputs, error) {
	r := rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))

	grid, err := tensor.Zeros(tensor.Shape{d.C, d.D, d.Gw, d.Gh, d.B}, tensor.CPU)
	if err != nil {
		return Inputs{}, err
	}
	guide, err := tensor.Zeros(tensor.Shape{d.W, d.H, d.B}, tensor.CPU)
	if err != nil {
		return Inputs{}, err
	}
	tangent, err := tensor.Zeros(tensor.Shape{d.C, d.W, d.H, d.B}, tensor.CPU)
	if err != nil {
		return Inputs{}, err
	}

	for _, s := range [][]float32{grid.AsFloat32(), tangent.AsFloat32()} {
		for i := range s {
			s[i] = 2*r.Float32() - 1
		}
	}
	g := guide.AsFloat32()
	for i := range g {
		k := r.IntN(d.D+2) - 1
		g[i] = (float32(k) + 0.6 + 0.8*r.Float32()) / float32(d.D)
	}

	return Inputs{Grid: grid, Guide: guide, Tangent: tangent}, nil
}

// Run checks backend on random inputs of size d.
func Run(ctx context.Context, backend tensor.Backend, d Dims, opts Options) (Report, error) {
	in, err := RandomInputs(d, opts.Seed)
	if err != nil {
		return Report{}, err
	}
	return Check(ctx, backend, in, opts)
}

// Check compares analytic and numeric gradients on the given inputs.
// It perturbs in.Grid and in.Guide in place and restores them.
func Check(ctx context.Context, backend tensor.Backend, in Inputs, opts Options) (Report, error) {
	gridShape := in.Grid.Shape()
	report := Report{Dims: Dims{
		C: gridShape[0], D: gridShape[1], Gw: gridShape[2], Gh: gridShape[3],
		W: in.Guide.Shape()[0], H: in.Guide.Shape()[1], B: gridShape[4],
	}}

	gridGrad, guideGrad, err := backend.BilateralSliceGrad(in.Grid, in.Guide, in.Tangent)
	if err != nil {
		return report, fmt.Errorf("analytic gradient: %w", err)
	}

	loss := func() (float64, error) {
		out, err := backend.BilateralSlice(in.Grid, in.Guide)
		if err != nil {
			return 0, err
		}
		var l float64
		for i, v := range out.AsFloat32() {
			l += float64(v) * float64(in.Tangent.AsFloat32()[i])
		}
		return l, nil
	}

	gridIdx := sample(len(in.Grid.AsFloat32()), opts.MaxChecks, opts.Seed)
	guideIdx := sample(len(in.Guide.AsFloat32()), opts.MaxChecks, opts.Seed+1)
	total := len(gridIdx) + len(guideIdx)

	checks := []struct {
		name   string
		values []float32
		grad   []float32
		idx    []int
		step   float32
		maxErr *float64
	}{
		{"grid", in.Grid.AsFloat32(), gridGrad.AsFloat32(), gridIdx, opts.GridStep, &report.MaxGridErr},
		{"guide", in.Guide.AsFloat32(), guideGrad.AsFloat32(), guideIdx, opts.GuideStep / float32(report.Dims.D), &report.MaxGuideErr},
	}

	for _, c := range checks {
		for _, i := range c.idx {
			if err := ctx.Err(); err != nil {
				return report, err
			}

			numeric, err := centralDifference(c.values, i, c.step, loss)
			if err != nil {
				return report, fmt.Errorf("%s[%d]: %w", c.name, i, err)
			}

			analytic := float64(c.grad[i])
			diff := math.Abs(analytic - numeric)
			*c.maxErr = max(*c.maxErr, diff)
			if diff > opts.Tolerance {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Tensor: c.name, Index: i, Analytic: analytic, Numeric: numeric,
				})
			}

			report.Checked++
			if opts.Progress != nil {
				opts.Progress(report.Checked, total)
			}
		}
	}

	return report, nil
}

// centralDifference perturbs values[i] by ±step, dividing by the float32
// distance actually covered.
func centralDifference(values []float32, i int, step float32, loss func() (float64, error)) (float64, error) {
	orig := values[i]
	defer func() { values[i] = orig }()

	plus, minus := orig+step, orig-step

	values[i] = plus
	lp, err := loss()
	if err != nil {
		return 0, err
	}
	values[i] = minus
	lm, err := loss()
	if err != nil {
		return 0, err
	}
	return (lp - lm) / float64(plus-minus), nil
}

// sample returns up to limit distinct indices in [0, n), all of them when
// limit is 0 or at least n.
func sample(n, limit int, seed uint64) []int {
	if limit <= 0 || limit >= n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	r := rand.New(rand.NewPCG(seed, 7))
	return r.Perm(n)[:limit]
}
