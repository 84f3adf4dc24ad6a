package serialization

import (
	"errors"
	"fmt"
)

// Sentinel errors; test with errors.Is.
var (
	ErrNotFound          = errors.New("tensor not found")
	ErrFormat            = errors.New("malformed safetensors file")
	ErrHeaderTooLarge    = errors.New("header exceeds maximum size")
	ErrUnsupportedDType  = errors.New("unsupported dtype")
	ErrReaderClosed      = errors.New("reader is closed")
	ErrInvalidTensorName = errors.New("invalid tensor name")
)

// HeaderError locates a structural problem in a file header. It matches
// ErrFormat under errors.Is.
type HeaderError struct {
	Tensor string // offending entry, empty for file-wide problems
	Reason string
}

func (e *HeaderError) Error() string {
	if e.Tensor == "" {
		return fmt.Sprintf("%v: %s", ErrFormat, e.Reason)
	}
	return fmt.Sprintf("%v: tensor %q: %s", ErrFormat, e.Tensor, e.Reason)
}

func (e *HeaderError) Unwrap() error {
	return ErrFormat
}

func headerErrorf(tensor, format string, args ...any) error {
	return &HeaderError{Tensor: tensor, Reason: fmt.Sprintf(format, args...)}
}
