package device

import "fmt"

// DType identifies the element type of a Buffer. The set is closed: kernels
// dispatch on these tags to select a concrete generic instantiation at the API
// boundary, so every tag here must have a case in every dispatch switch.
type DType int

const (
	DTypeInt8 DType = iota
	DTypeInt16
	DTypeInt32
	DTypeInt64
	DTypeUint8
	DTypeUint16
	DTypeUint32
	DTypeUint64
)

func (t DType) Size() int {
	switch t {
	case DTypeInt8, DTypeUint8:
		return 1
	case DTypeInt16, DTypeUint16:
		return 2
	case DTypeInt32, DTypeUint32:
		return 4
	case DTypeInt64, DTypeUint64:
		return 8
	default:
		panic(fmt.Sprintf("device: unknown dtype %d", t))
	}
}

func (t DType) String() string {
	switch t {
	case DTypeInt8:
		return "int8"
	case DTypeInt16:
		return "int16"
	case DTypeInt32:
		return "int32"
	case DTypeInt64:
		return "int64"
	case DTypeUint8:
		return "uint8"
	case DTypeUint16:
		return "uint16"
	case DTypeUint32:
		return "uint32"
	case DTypeUint64:
		return "uint64"
	default:
		return fmt.Sprintf("DType(%d)", int(t))
	}
}

// ParseDType maps a wire-format type name to its tag. Used at the API
// boundary where callers name element types as strings.
func ParseDType(s string) (DType, error) {
	switch s {
	case "int8":
		return DTypeInt8, nil
	case "int16":
		return DTypeInt16, nil
	case "int32":
		return DTypeInt32, nil
	case "int64":
		return DTypeInt64, nil
	case "uint8":
		return DTypeUint8, nil
	case "uint16":
		return DTypeUint16, nil
	case "uint32":
		return DTypeUint32, nil
	case "uint64":
		return DTypeUint64, nil
	}

	return 0, fmt.Errorf("device: unsupported dtype %q", s)
}
