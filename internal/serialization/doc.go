// Package serialization reads and writes bilateral slice tensors in the
// SafeTensors format.
//
//	Format Structure:
//	  [8 bytes: Header Size N (uint64 LE)]
//	  [N bytes: JSON header, space padded to a multiple of 8]
//	  [Tensor data: little-endian raw bytes]
//
// The JSON header maps each tensor name to its dtype, shape and
// [begin, end) byte offsets into the data section. The optional
// "__metadata__" entry holds string key/value pairs.
//
// Shapes on disk are outermost-first (row-major), the reverse of the
// in-memory tensor.Shape convention, so a grid [C, D, Gw, Gh, B] is stored
// as [B, Gh, Gw, D, C]. The bytes are identical; only the shape list is
// reversed on read and write.
//
// The reader accepts F32, F64 and F16 data and always returns float32
// tensors. The writer emits F32 (or F64 for float64 tensors), and F16 when
// asked to.
//
// Example usage:
//
//	err := serialization.WriteFile("out.safetensors", map[string]*tensor.RawTensor{
//	    serialization.NameOutput: out,
//	}, nil)
//
//	r, err := serialization.Open("in.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//	grid, err := r.Tensor(serialization.NameGrid)
package serialization
