package serialization

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Limits applied while parsing headers.
const (
	MaxHeaderSize    = 100 << 20
	MaxTensorCount   = 100_000
	MaxTensorNameLen = 4096
)

// ValidateTensorOffsets checks that every tensor's byte range lies inside
// the data section and that no two ranges overlap.
func ValidateTensorOffsets(tensors []TensorMeta, dataSize int64) error {
	if len(tensors) > MaxTensorCount {
		return headerErrorf("", "%d tensors, at most %d allowed", len(tensors), MaxTensorCount)
	}

	byOffset := slices.SortedFunc(slices.Values(tensors), func(a, b TensorMeta) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	end := int64(0)
	prev := ""
	for _, t := range byOffset {
		switch {
		case t.Offset < 0 || t.Size < 0:
			return headerErrorf(t.Name, "negative range [%d, +%d)", t.Offset, t.Size)
		case t.Offset+t.Size > dataSize:
			return headerErrorf(t.Name, "range [%d, %d) past data section of %d bytes", t.Offset, t.Offset+t.Size, dataSize)
		case t.Offset < end:
			return headerErrorf(t.Name, "range starting at %d overlaps %q ending at %d", t.Offset, prev, end)
		}
		end, prev = t.Offset+t.Size, t.Name
	}
	return nil
}

// ValidateTensorName rejects empty, oversized, reserved and path-like names.
func ValidateTensorName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidTensorName)
	case len(name) > MaxTensorNameLen:
		return fmt.Errorf("%w: length %d > max %d", ErrInvalidTensorName, len(name), MaxTensorNameLen)
	case name == metadataKey:
		return fmt.Errorf("%w: %q is reserved", ErrInvalidTensorName, name)
	case strings.Contains(name, ".."), strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidTensorName, name)
	}
	return nil
}

// validateEntry checks one header entry and converts it to TensorMeta with
// the shape in memory order.
func validateEntry(name string, e headerEntry) (TensorMeta, error) {
	if err := ValidateTensorName(name); err != nil {
		return TensorMeta{}, err
	}
	elemSize, ok := dtypeSize(e.DType)
	if !ok {
		return TensorMeta{}, fmt.Errorf("tensor %q: %w: %s", name, ErrUnsupportedDType, e.DType)
	}

	n := int64(1)
	for _, dim := range e.Shape {
		if dim < 0 {
			return TensorMeta{}, headerErrorf(name, "negative extent in shape %v", e.Shape)
		}
		if dim != 0 && n > math.MaxInt64/dim {
			return TensorMeta{}, headerErrorf(name, "element count of shape %v overflows", e.Shape)
		}
		n *= dim
	}
	if n > math.MaxInt64/int64(elemSize) || n > math.MaxInt {
		return TensorMeta{}, headerErrorf(name, "byte size of shape %v overflows", e.Shape)
	}

	begin, end := e.DataOffsets[0], e.DataOffsets[1]
	if end < begin {
		return TensorMeta{}, headerErrorf(name, "data_offsets [%d, %d] are reversed", begin, end)
	}
	if end-begin != n*int64(elemSize) {
		return TensorMeta{}, headerErrorf(name, "%d bytes cannot hold %d %s elements", end-begin, n, e.DType)
	}

	return TensorMeta{
		Name:   name,
		DType:  e.DType,
		Shape:  memoryShape(e.Shape),
		Offset: begin,
		Size:   end - begin,
	}, nil
}
