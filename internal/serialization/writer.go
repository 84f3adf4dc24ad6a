package serialization

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/born-ml/bislice/internal/tensor"
	"github.com/goccy/go-json"
	"github.com/x448/float16"
)

// Writer writes tensors in SafeTensors format.
type Writer struct {
	file   *os.File
	half   bool
	closed bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithHalfPrecision stores float32 tensors as F16.
func WithHalfPrecision() WriterOption {
	return func(w *Writer) {
		w.half = true
	}
}

// NewWriter creates a new SafeTensors file writer.
func NewWriter(path string, opts ...WriterOption) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for tensor saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	w := &Writer{file: file}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// WriteFile writes tensors to a SafeTensors file.
func WriteFile(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string, opts ...WriterOption) error {
	writer, err := NewWriter(path, opts...)
	if err != nil {
		return err
	}

	if err := writer.WriteTensors(tensors, metadata); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

// WriteTensors writes a set of named tensors and optional metadata.
// Tensors are laid out in lexical name order.
func (w *Writer) WriteTensors(tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}

	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(tensors)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}

	var offset int64
	for _, name := range names {
		raw := tensors[name]
		dtype, err := w.dtypeFor(raw)
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
		elemSize, _ := dtypeSize(dtype)
		size := int64(raw.NumElements() * elemSize)

		header[name] = headerEntry{
			DType:       dtype,
			Shape:       diskShape(raw.Shape()),
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if pad := len(headerJSON) % HeaderAlignment; pad != 0 {
		headerJSON = append(headerJSON, bytes.Repeat([]byte{' '}, HeaderAlignment-pad)...)
	}

	if err := binary.Write(w.file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, name := range names {
		raw := tensors[name]
		dtype, _ := w.dtypeFor(raw)
		if _, err := w.file.Write(encode(dtype, raw)); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

func (w *Writer) dtypeFor(raw *tensor.RawTensor) (string, error) {
	switch raw.DType() {
	case tensor.Float32:
		if w.half {
			return DTypeF16, nil
		}
		return DTypeF32, nil
	case tensor.Float64:
		return DTypeF64, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDType, raw.DType())
	}
}

// encode converts a tensor into little-endian stored elements.
func encode(dtype string, raw *tensor.RawTensor) []byte {
	elemSize, _ := dtypeSize(dtype)
	out := make([]byte, raw.NumElements()*elemSize)

	switch dtype {
	case DTypeF32:
		for i, v := range raw.AsFloat32() {
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
		}
	case DTypeF16:
		for i, v := range raw.AsFloat32() {
			binary.LittleEndian.PutUint16(out[2*i:], float16.Fromfloat32(v).Bits())
		}
	case DTypeF64:
		for i, v := range raw.AsFloat64() {
			binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
		}
	}
	return out
}
