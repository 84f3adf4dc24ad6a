package kernels

import (
	"math/rand/v2"
	"sync"

	"github.com/born-ml/bislice/internal/parallel"
	"github.com/born-ml/bislice/internal/tensor"
)

// recordingDevice runs kernels sequentially and remembers what was launched.
type recordingDevice struct {
	mu       sync.Mutex
	launches map[string]int
	failed   bool
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{launches: make(map[string]int)}
}

func (d *recordingDevice) Launch(name string, count int, kernel func(idx int)) {
	d.mu.Lock()
	d.launches[name] = count
	d.mu.Unlock()
	for i := 0; i < count; i++ {
		kernel(i)
	}
}

func (d *recordingDevice) OK() bool { return !d.failed }

// dims describes one test problem.
type dims struct {
	C, D, Gw, Gh, W, H, B int
}

func (d dims) gridLen() int  { return d.C * d.D * d.Gw * d.Gh * d.B }
func (d dims) guideLen() int { return d.W * d.H * d.B }
func (d dims) outLen() int   { return d.C * d.W * d.H * d.B }

func (d dims) gridView(data []float32) tensor.View5 {
	return tensor.NewView5(data, d.C, d.D, d.Gw, d.Gh, d.B)
}

func (d dims) guideView(data []float32) tensor.View3 {
	return tensor.NewView3(data, d.W, d.H, d.B)
}

func (d dims) outView(data []float32) tensor.View4 {
	return tensor.NewView4(data, d.C, d.W, d.H, d.B)
}

func randomSlice(r *rand.Rand, n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = 2*r.Float32() - 1
	}
	return s
}

// randomGuide draws guide values whose depth coordinate stays at least 0.1
// away from cell centers, where the depth weight has kinks, and covers a
// cell beyond each end of the depth axis.
func randomGuide(r *rand.Rand, d dims) []float32 {
	g := make([]float32, d.guideLen())
	for i := range g {
		k := r.IntN(d.D+2) - 1
		gzf := float32(k) + 0.6 + 0.8*r.Float32()
		g[i] = gzf / float32(d.D)
	}
	return g
}

func forward(d dims, grid, guide []float32) []float32 {
	out := make([]float32, d.outLen())
	dev := parallel.NewLauncher(parallel.Sequential(), nil)
	if !Slice(dev, d.gridView(grid), d.guideView(guide), d.outView(out)) {
		panic("forward launch failed")
	}
	return out
}

// loss is Σ out·tangent, the scalar whose gradients are the VJPs.
func loss(d dims, grid, guide, tangent []float32) float64 {
	out := forward(d, grid, guide)
	var l float64
	for i, v := range out {
		l += float64(v) * float64(tangent[i])
	}
	return l
}
