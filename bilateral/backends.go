// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bilateral

import (
	"github.com/born-ml/bislice/internal/backend/cpu"
	"github.com/born-ml/bislice/internal/backend/webgpu"
	"github.com/born-ml/bislice/internal/logger"
	"github.com/born-ml/bislice/internal/parallel"
)

// ParallelConfig controls how the CPU backend splits a launch into blocks.
type ParallelConfig = parallel.Config

// DefaultParallelConfig uses one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// SequentialConfig runs every launch on the calling goroutine's block.
func SequentialConfig() ParallelConfig {
	return parallel.Sequential()
}

// Logger is the structured logger backends report launches to.
type Logger = logger.Logger

// CPUBackend runs the kernels on a goroutine launcher.
type CPUBackend = cpu.CPUBackend

// WebGPUBackend runs the kernels as WGSL compute shaders.
type WebGPUBackend = webgpu.Backend

// NewCPU creates a CPU backend.
//
// Example:
//
//	backend := bilateral.NewCPU(bilateral.DefaultParallelConfig())
//	out, err := bilateral.Slice(backend, grid, guide)
func NewCPU(cfg ParallelConfig) *CPUBackend {
	return cpu.NewWithConfig(cfg, nil)
}

// NewCPUWithLogger creates a CPU backend that logs each launch at debug level.
func NewCPUWithLogger(cfg ParallelConfig, log Logger) *CPUBackend {
	return cpu.NewWithConfig(cfg, log)
}

// NewWebGPU opens the default GPU adapter. It returns an error wrapping
// ErrUnavailable when WebGPU cannot be used on this system.
// Call Release when the backend is no longer needed.
func NewWebGPU() (*WebGPUBackend, error) {
	return webgpu.New(nil)
}
