// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bilateral provides the public API for the bilateral slice: sampling
// a bilateral grid at the pixels of a guide image, and its gradients with
// respect to the grid and the guide.
//
// Tensors are stored with dimension 0 innermost:
//   - grid: [C, D, Gw, Gh, B]
//   - guide: [W, H, B], intensities in [0, 1]
//   - output and codomain tangent: [C, W, H, B]
//
// Example:
//
//	import "github.com/born-ml/bislice/bilateral"
//
//	func main() {
//	    backend := bilateral.NewCPU(bilateral.DefaultParallelConfig())
//
//	    grid, _ := bilateral.Zeros(bilateral.Shape{12, 8, 16, 16, 1})
//	    guide, _ := bilateral.Full(bilateral.Shape{256, 256, 1}, 0.5)
//
//	    out, err := bilateral.Slice(backend, grid, guide)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    _ = out
//	}
package bilateral
