package serialization

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/born-ml/bislice/internal/tensor"
	"github.com/goccy/go-json"
	"github.com/x448/float16"
)

// Reader provides memory-mapped access to a SafeTensors file.
// Only the header is parsed on Open; tensor bytes are read on demand
// through the OS page cache.
//
// Important: Always call Close() when done to unmap the file (use defer).
type Reader struct {
	file       *os.File
	data       []byte // mmap'd region (read-only)
	size       int64
	dataOffset int64
	tensors    []TensorMeta // sorted by name
	metadata   map[string]string
	closed     bool
}

// Open memory-maps a SafeTensors file and parses its header.
func Open(path string) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for tensor loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if stat.Size() < headerSizeLen {
		_ = file.Close()
		return nil, fmt.Errorf("%w: file too small: %d bytes", ErrFormat, stat.Size())
	}

	data, err := mmapFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	r := &Reader{
		file: file,
		data: data,
		size: stat.Size(),
	}

	if err := r.parseHeader(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return r, nil
}

// parseHeader reads and validates the JSON header from the mapped region.
func (r *Reader) parseHeader() error {
	headerSize := binary.LittleEndian.Uint64(r.data[:headerSizeLen])
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	headerEnd := headerSizeLen + int64(headerSize) //nolint:gosec // G115: bounded by MaxHeaderSize
	if headerEnd > r.size {
		return headerErrorf("", "header ends at byte %d of a %d byte file", headerEnd, r.size)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(r.data[headerSizeLen:headerEnd], &raw); err != nil {
		return fmt.Errorf("%w: failed to parse header JSON: %w", ErrFormat, err)
	}

	if meta, ok := raw[metadataKey]; ok {
		if err := json.Unmarshal(meta, &r.metadata); err != nil {
			return fmt.Errorf("%w: failed to parse %s: %w", ErrFormat, metadataKey, err)
		}
		delete(raw, metadataKey)
	}

	r.tensors = make([]TensorMeta, 0, len(raw))
	for name, msg := range raw {
		var entry headerEntry
		if err := json.Unmarshal(msg, &entry); err != nil {
			return fmt.Errorf("%w: tensor %q: %w", ErrFormat, name, err)
		}
		meta, err := validateEntry(name, entry)
		if err != nil {
			if errors.Is(err, ErrFormat) {
				return err
			}
			return fmt.Errorf("%w: %w", ErrFormat, err)
		}
		r.tensors = append(r.tensors, meta)
	}
	slices.SortFunc(r.tensors, func(a, b TensorMeta) int {
		return strings.Compare(a.Name, b.Name)
	})

	r.dataOffset = headerEnd
	return ValidateTensorOffsets(r.tensors, r.size-r.dataOffset)
}

// Close unmaps and closes the file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var err error
	if r.data != nil {
		err = munmapFile(r.data)
		r.data = nil
	}

	if closeErr := r.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	return err
}

// Metadata returns the "__metadata__" entries, or nil.
func (r *Reader) Metadata() map[string]string {
	return r.metadata
}

// TensorNames returns all tensor names in lexical order.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.tensors))
	for i, t := range r.tensors {
		names[i] = t.Name
	}
	return names
}

// Tensors returns metadata for every tensor, in lexical name order.
func (r *Reader) Tensors() []TensorMeta {
	return append([]TensorMeta(nil), r.tensors...)
}

// TensorInfo returns metadata about a specific tensor.
func (r *Reader) TensorInfo(name string) (TensorMeta, error) {
	i, found := slices.BinarySearchFunc(r.tensors, name, func(m TensorMeta, name string) int {
		return strings.Compare(m.Name, name)
	})
	if found {
		return r.tensors[i], nil
	}
	return TensorMeta{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Has reports whether the file contains a tensor called name.
func (r *Reader) Has(name string) bool {
	_, err := r.TensorInfo(name)
	return err == nil
}

// TensorData returns a zero-copy slice to a tensor's stored bytes.
// The returned slice is valid only while the reader is open and must not be
// written to.
func (r *Reader) TensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, ErrReaderClosed
	}

	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	start := r.dataOffset + meta.Offset
	return r.data[start : start+meta.Size], nil
}

// Tensor loads a tensor as float32, converting F64 and F16 data.
func (r *Reader) Tensor(name string) (*tensor.RawTensor, error) {
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	data, err := r.TensorData(name)
	if err != nil {
		return nil, err
	}

	raw, err := tensor.NewRaw(meta.Shape, tensor.Float32, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", name, err)
	}
	decode(meta.DType, data, raw.AsFloat32())
	return raw, nil
}

// decode converts little-endian stored elements into dst.
func decode(dtype string, src []byte, dst []float32) {
	switch dtype {
	case DTypeF32:
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
		}
	case DTypeF64:
		for i := range dst {
			dst[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(src[8*i:])))
		}
	case DTypeF16:
		for i := range dst {
			dst[i] = float16.Frombits(binary.LittleEndian.Uint16(src[2*i:])).Float32()
		}
	default:
		panic("serialization: decode of unvalidated dtype " + dtype)
	}
}

// ReadFile loads every tensor of a SafeTensors file as float32.
func ReadFile(path string) (map[string]*tensor.RawTensor, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()

	tensors := make(map[string]*tensor.RawTensor, len(r.tensors))
	for _, meta := range r.tensors {
		raw, err := r.Tensor(meta.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load tensor %s: %w", meta.Name, err)
		}
		tensors[meta.Name] = raw
	}
	return tensors, nil
}
