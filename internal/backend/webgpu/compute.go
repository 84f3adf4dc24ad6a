//go:build windows

package webgpu

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// compileShader compiles WGSL shader code into a ShaderModule.
// Results are cached in the Backend's shaders map.
func (b *Backend) compileShader(name, code string) *wgpu.ShaderModule {
	b.mu.RLock()
	if shader, exists := b.shaders[name]; exists {
		b.mu.RUnlock()
		return shader
	}
	b.mu.RUnlock()

	shader := b.device.CreateShaderModuleWGSL(code)

	b.mu.Lock()
	b.shaders[name] = shader
	b.mu.Unlock()

	return shader
}

// getOrCreatePipeline returns a cached ComputePipeline or creates a new one.
func (b *Backend) getOrCreatePipeline(name string, shader *wgpu.ShaderModule) *wgpu.ComputePipeline {
	b.mu.RLock()
	if pipeline, exists := b.pipelines[name]; exists {
		b.mu.RUnlock()
		return pipeline
	}
	b.mu.RUnlock()

	// Auto layout (nil layout) derived from the shader bindings.
	pipeline := b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.pipelines[name] = pipeline
	b.mu.Unlock()

	return pipeline
}

// createBuffer creates a storage buffer holding data. Empty inputs get a
// 4-byte buffer since zero-sized bindings are invalid.
func (b *Backend) createBuffer(data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, uint64) {
	size := uint64(max(len(data), 4))

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer, size
}

// createUniformBuffer creates a uniform buffer rounded up to 16 bytes.
func (b *Backend) createUniformBuffer(data []byte) (*wgpu.Buffer, uint64) {
	size := uint64(len(data))
	alignedSize := (size + 15) &^ 15

	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		Size:             alignedSize,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alignedSize)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alignedSize)
	copy(mappedSlice, data)
	buffer.Unmap()

	return buffer, alignedSize
}

// readBuffer copies a storage buffer back to host memory through a staging
// buffer, since storage buffers can't be mapped directly.
func (b *Backend) readBuffer(srcBuffer *wgpu.Buffer, size uint64) ([]byte, error) {
	stagingBuffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  size,
	})
	defer stagingBuffer.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(srcBuffer, 0, stagingBuffer, 0, size)
	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	if err := stagingBuffer.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("failed to map staging buffer: %w", err)
	}

	mappedPtr := stagingBuffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), size)
	result := make([]byte, size)
	copy(result, mappedSlice)
	stagingBuffer.Unmap()

	return result, nil
}

// params is the host copy of the Params uniform.
type params struct {
	channels, depth, gridWidth, gridHeight int
	guideWidth, guideHeight, batch         int
	units                                  int
}

func (p params) bytes() []byte {
	buf := make([]byte, paramsSize)
	for i, v := range []int{
		p.channels, p.depth, p.gridWidth, p.gridHeight,
		p.guideWidth, p.guideHeight, p.batch, p.units,
	} {
		//nolint:gosec // G115: extents are validated non-negative and fit in u32
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(v))
	}
	return buf
}

// dispatchSize splits a unit count into workgroups along x, spilling into y
// past the per-axis limit. Shaders recover the flat index from num_workgroups.
func dispatchSize(units int) (x, y uint32) {
	workgroups := (units + workgroupSize - 1) / workgroupSize
	if workgroups <= maxWorkgroupsPerDim {
		return uint32(workgroups), 1 //nolint:gosec // G115: bounded above
	}
	rows := (workgroups + maxWorkgroupsPerDim - 1) / maxWorkgroupsPerDim
	return maxWorkgroupsPerDim, uint32(rows) //nolint:gosec // G115: rows is small
}

// runKernel uploads inputs to bindings 0..n-1, binds a result buffer of
// resultBytes at n and the params uniform at n+1, dispatches one invocation
// per unit and reads the result back.
func (b *Backend) runKernel(name, code string, inputs [][]byte, resultBytes int, p params) ([]byte, error) {
	b.log.Debug("launch", "kernel", name, "units", p.units)

	shader := b.compileShader(name, code)
	pipeline := b.getOrCreatePipeline(name, shader)

	entries := make([]wgpu.BindGroupEntry, 0, len(inputs)+2)
	for i, data := range inputs {
		buffer, size := b.createBuffer(data, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
		defer buffer.Release()
		entries = append(entries, wgpu.BufferBindingEntry(uint32(i), buffer, 0, size)) //nolint:gosec // G115: few bindings
	}

	//nolint:gosec // G115: resultBytes is a non-negative tensor byte size
	resultSize := uint64(resultBytes)
	bufferResult := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  resultSize,
	})
	defer bufferResult.Release()
	resultBinding := uint32(len(inputs)) //nolint:gosec // G115: few bindings
	entries = append(entries, wgpu.BufferBindingEntry(resultBinding, bufferResult, 0, resultSize))

	bufferParams, paramsBytes := b.createUniformBuffer(p.bytes())
	defer bufferParams.Release()
	entries = append(entries, wgpu.BufferBindingEntry(resultBinding+1, bufferParams, 0, paramsBytes))

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, entries)
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	x, y := dispatchSize(p.units)
	computePass.DispatchWorkgroups(x, y, 1)
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)

	data, err := b.readBuffer(bufferResult, resultSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return data, nil
}
