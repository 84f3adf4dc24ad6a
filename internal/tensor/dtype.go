// Package tensor provides the storage and strided array views used by the
// bilateral slice kernels.
package tensor

// DataType is the element type of a RawTensor. The kernels only read
// Float32; Float64 exists so that double-precision files can be loaded and
// narrowed.
type DataType int

// Element types.
const (
	Float32 DataType = iota
	Float64
)

var dtypeInfo = [...]struct {
	name  string
	bytes int
}{
	Float32: {"float32", 4},
	Float64: {"float64", 8},
}

func (dt DataType) known() bool {
	return dt >= 0 && int(dt) < len(dtypeInfo)
}

// Size returns the element width in bytes. It panics on an unknown type.
func (dt DataType) Size() int {
	if !dt.known() {
		panic("tensor: unknown data type")
	}
	return dtypeInfo[dt].bytes
}

func (dt DataType) String() string {
	if !dt.known() {
		return "unknown"
	}
	return dtypeInfo[dt].name
}
