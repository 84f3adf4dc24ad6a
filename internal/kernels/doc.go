// Package kernels implements the bilateral slice operation and its two
// vector-Jacobian products as data-parallel kernels.
//
// A bilateral grid [C, D, Gw, Gh, B] holds low-resolution per-cell
// coefficients. Slicing samples it at every pixel of a guide image
// [W, H, B]: the pixel position selects the spatial coordinates and the guide
// intensity selects the depth coordinate. Samples sit at cell centers
// (coordinate i+0.5 for cell i).
//
// Each kernel maps one linear unit index to one output element and only
// reads its inputs, so units never write to shared memory:
//
//	SliceKernel      one unit per output element      (c, x, y, b)
//	GridGradKernel   one unit per grid cell           (c, z, x, y, b)
//	GuideGradKernel  one unit per guide pixel         (x, y, b)
//
// Indices are factored with the innermost dimension varying fastest.
//
// Boundary handling differs between passes. The forward and
// guide-gradient kernels clamp grid indices, while the grid-gradient kernel
// mirrors guide and tangent indices at the image border.
package kernels
