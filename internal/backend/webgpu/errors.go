// Package webgpu implements the WebGPU backend: the bilateral slice kernels
// compiled as WGSL compute shaders through go-webgpu (zero-CGO bindings).
//
// The backend is built on windows only. Elsewhere New returns ErrUnavailable.
package webgpu

import "errors"

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrUnavailable reports that no WebGPU device can be opened.
	ErrUnavailable = errors.New("webgpu: not available")
	// ErrLaunch reports that a shader dispatch failed.
	ErrLaunch = errors.New("webgpu: kernel launch failed")
)
