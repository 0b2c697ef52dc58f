package device

import (
	"fmt"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Buffer is a flat, fixed-length, device-resident array of integers. Storage
// is untyped bytes; the DType tag records how kernels should reinterpret it.
// A Buffer is either an allocation or a view into one (see View); views share
// storage and must not outlive a Release of the parent.
type Buffer struct {
	a   *Allocator
	dt  DType
	off int // element offset into raw, used by views
	n   int
	raw []byte

	parent   *Buffer // set on views; Release forwards to the allocation
	released bool
}

func (b *Buffer) DType() DType          { return b.dt }
func (b *Buffer) Len() int              { return b.n }
func (b *Buffer) Allocator() *Allocator { return b.a }

// Bytes returns the backing storage for exactly this buffer's elements.
func (b *Buffer) Bytes() []byte {
	size := b.dt.Size()
	return b.raw[b.off*size : (b.off+b.n)*size]
}

// View returns a buffer aliasing elements [off, off+n) of b. No data moves.
func (b *Buffer) View(off, n int) *Buffer {
	if off < 0 || n < 0 || off+n > b.n {
		panic(fmt.Sprintf("device: view [%d, %d) out of range of buffer length %d", off, off+n, b.n))
	}

	parent := b
	if b.parent != nil {
		parent = b.parent
	}

	return &Buffer{a: b.a, dt: b.dt, off: b.off + off, n: n, raw: b.raw, parent: parent}
}

// Release returns the buffer's bytes to the allocator's accounting. Releasing
// a view releases the allocation it aliases.
func (b *Buffer) Release() {
	if b.parent != nil {
		b.parent.Release()
		return
	}

	if b.released {
		return
	}

	b.released = true
	if b.a != nil {
		b.a.release(int64(len(b.raw)))
	}
}

// DTypeOf returns the tag for a concrete integer type.
func DTypeOf[T constraints.Integer]() DType {
	var z T
	unsigned := z-1 > 0

	switch unsafe.Sizeof(z) {
	case 1:
		if unsigned {
			return DTypeUint8
		}
		return DTypeInt8
	case 2:
		if unsigned {
			return DTypeUint16
		}
		return DTypeInt16
	case 4:
		if unsigned {
			return DTypeUint32
		}
		return DTypeInt32
	default:
		if unsigned {
			return DTypeUint64
		}
		return DTypeInt64
	}
}

// Elems reinterprets the buffer's storage as a []T without copying, the
// moral equivalent of casting a device pointer. T's width must match the
// buffer's dtype width exactly.
func Elems[T constraints.Integer](b *Buffer) []T {
	var z T
	if int(unsafe.Sizeof(z)) != b.dt.Size() {
		panic(fmt.Sprintf("device: cannot view %s buffer as %d-byte elements", b.dt, unsafe.Sizeof(z)))
	}

	if b.n == 0 {
		return nil
	}

	bts := b.Bytes()
	return unsafe.Slice((*T)(unsafe.Pointer(&bts[0])), b.n)
}

// Scratch reinterprets untyped scratch storage as n elements of T. The
// scratch buffer must have been sized for at least n elements.
func Scratch[T constraints.Integer](b *Buffer, n int) []T {
	var z T
	if b.dt != DTypeUint8 {
		panic(fmt.Sprintf("device: scratch buffer has dtype %s, want %s", b.dt, DTypeUint8))
	}
	if n*int(unsafe.Sizeof(z)) > b.n {
		panic(fmt.Sprintf("device: scratch of %d bytes too small for %d %d-byte elements", b.n, n, unsafe.Sizeof(z)))
	}

	if n == 0 {
		return nil
	}

	bts := b.Bytes()
	return unsafe.Slice((*T)(unsafe.Pointer(&bts[0])), n)
}

// FromSlice allocates a buffer of len(s) elements and copies s into it,
// modeling a host to device transfer.
func FromSlice[T constraints.Integer](a *Allocator, s []T) *Buffer {
	b := a.Alloc(DTypeOf[T](), len(s))
	copy(Elems[T](b), s)
	return b
}

// ToSlice copies the buffer out element by element, modeling a device to
// host transfer. The caller must have synchronized the stream that produced b.
func ToSlice[T constraints.Integer](b *Buffer) []T {
	out := make([]T, b.n)
	copy(out, Elems[T](b))
	return out
}

// Int64At reads element i widened to int64, whatever the buffer's dtype.
// Used for host read-backs such as size discovery after a scan.
func Int64At(b *Buffer, i int) int64 {
	switch b.dt {
	case DTypeInt8:
		return int64(Elems[int8](b)[i])
	case DTypeInt16:
		return int64(Elems[int16](b)[i])
	case DTypeInt32:
		return int64(Elems[int32](b)[i])
	case DTypeInt64:
		return Elems[int64](b)[i]
	case DTypeUint8:
		return int64(Elems[uint8](b)[i])
	case DTypeUint16:
		return int64(Elems[uint16](b)[i])
	case DTypeUint32:
		return int64(Elems[uint32](b)[i])
	case DTypeUint64:
		return int64(Elems[uint64](b)[i])
	default:
		panic(fmt.Sprintf("device: unknown dtype %d", b.dt))
	}
}

// Int64s copies the whole buffer out widened to int64.
func Int64s(b *Buffer) []int64 {
	out := make([]int64, b.n)
	for i := range out {
		out[i] = Int64At(b, i)
	}
	return out
}
