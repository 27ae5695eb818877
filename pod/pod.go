package pod

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"bosplit/process"
)

var (
	// ErrNotPOD is returned when T holds Go-managed references
	ErrNotPOD = errors.New("type contains pointers; not POD-safe")
	// ErrShortBuffer is returned when the source holds fewer than sizeof(T) bytes
	ErrShortBuffer = errors.New("buffer too small")
)

func SizeOf[T any]() process.ProcessMemorySize {
	var t T
	return process.ProcessMemorySize(unsafe.Sizeof(t))
}

func ReadT[T any](proc process.ProcessRead, addr process.ProcessMemoryAddress) (T, error) {
	size := SizeOf[T]()
	if size == 0 {
		return *new(T), errors.New("ReadT: size of T is zero")
	}

	blob, err := proc.ReadBlob(addr, size)
	if err != nil {
		return *new(T), err
	}

	return Decode[T](blob.Data())
}

// WriteT serializes a POD value into its in-memory layout. Used to build
// process images for tests and offline inspection.
func WriteT[T any](v T) []byte {
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return []byte{}
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	out := make([]byte, size)
	copy(out, src)
	return out
}

// ReadSliceT reads count contiguous elements with a single remote read
func ReadSliceT[T any](proc process.ProcessRead, addr process.ProcessMemoryAddress, count int) ([]T, error) {
	if count < 0 {
		return nil, errors.New("ReadSliceT: count must be positive")
	}

	size := SizeOf[T]()
	if size == 0 || count == 0 {
		return []T{}, nil
	}

	blob, err := proc.ReadBlob(addr, size*process.ProcessMemorySize(count))
	if err != nil {
		return nil, err
	}

	data := blob.Data()
	result := make([]T, count)
	elementSize := int(size)
	for i := range count {
		element, err := Decode[T](data[i*elementSize:])
		if err != nil {
			return nil, fmt.Errorf("ReadSliceT: failed to parse element %d: %w", i, err)
		}
		result[i] = element
	}

	return result, nil
}

// Decode copies the first sizeof(T) bytes of data into a new T.
// T must be POD: it and all of its fields/element types contain no pointers.
func Decode[T any](data []byte) (T, error) {
	var tmp T

	if hasPointers[T]() {
		return tmp, fmt.Errorf("Decode %T: %w", tmp, ErrNotPOD)
	}

	size := int(unsafe.Sizeof(tmp))
	if len(data) < size {
		return tmp, fmt.Errorf("Decode %T: have %d bytes, need %d: %w", tmp, len(data), size, ErrShortBuffer)
	}

	dst := unsafe.Slice((*byte)(unsafe.Pointer(&tmp)), size)
	copy(dst, data[:size])

	return tmp, nil
}

// hasPointers reports whether T (recursively) contains any pointer-like fields.
func hasPointers[T any]() bool {
	var t T
	return typeHasPointers(reflect.TypeOf(t))
}

func typeHasPointers(rt reflect.Type) bool {
	if rt == nil {
		return true
	}

	switch rt.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice, reflect.String, reflect.Chan:
		return true
	case reflect.Array:
		return typeHasPointers(rt.Elem())
	case reflect.Struct:
		for i := 0; i < rt.NumField(); i++ {
			if typeHasPointers(rt.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// bool, ints, uints, floats, complex, etc.
		return false
	}
}
