// Package remote_array decodes Mono/.NET arrays living in another process.
//
// A managed array object starts with an object header, stores its element
// count as a uint32 at +0x18 and its elements contiguously from +0x20.
package remote_array

import (
	"fmt"
	"iter"

	"bosplit/pod"
	"bosplit/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

const (
	CountOffset process.ProcessMemorySize = 0x18
	DataOffset  process.ProcessMemorySize = 0x20

	// MaxElements bounds allocation and I/O against a corrupt count field
	MaxElements = 2048
)

var log = logger.NewLogger(coloransi.Color(coloransi.Black, coloransi.ColorTeal, "remote-array"))

// Handle is a capability to decode the array at Base. It holds no data and
// must be re-obtained from the owning record whenever that record moves.
type Handle[T any] struct {
	Base process.ProcessMemoryAddress
}

func New[T any](base process.ProcessMemoryAddress) Handle[T] {
	return Handle[T]{Base: base}
}

// Stride is the size of one element in the remote buffer
func (h Handle[T]) Stride() process.ProcessMemorySize {
	return pod.SizeOf[T]()
}

func (h Handle[T]) check() error {
	if h.Base.IsNull() {
		return fmt.Errorf("array at %s: %w", h.Base, process.ErrInvalidPointer)
	}
	if !h.Base.IsAligned(process.PointerSize) {
		return fmt.Errorf("array at %s is not %d-byte aligned: %w", h.Base, process.PointerSize, process.ErrStructuralMismatch)
	}
	return nil
}

// Count reads the raw element count
func (h Handle[T]) Count(proc process.ProcessRead) (int, error) {
	if err := h.check(); err != nil {
		return 0, err
	}

	n, err := proc.ReadUINT32(h.Base.Add(CountOffset))
	if err != nil {
		return 0, fmt.Errorf("array count at %s: %w", h.Base, err)
	}

	return int(n), nil
}

func (h Handle[T]) cappedCount(proc process.ProcessRead) (int, error) {
	n, err := h.Count(proc)
	if err != nil {
		return 0, err
	}

	if n > MaxElements {
		log.Warn("array at", h.Base, "reports", n, "elements, capping at", MaxElements)
		n = MaxElements
	}

	return n, nil
}

// ReadAll decodes min(count, MaxElements) elements with one bulk read.
// Any failure discards the whole buffer.
func (h Handle[T]) ReadAll(proc process.ProcessRead) ([]T, error) {
	n, err := h.cappedCount(proc)
	if err != nil {
		return nil, err
	}

	elements, err := pod.ReadSliceT[T](proc, h.Base.Add(DataOffset), n)
	if err != nil {
		return nil, fmt.Errorf("array data at %s (%d elements): %w", h.Base, n, err)
	}

	return elements, nil
}

// Iterate reads elements one at a time, skipping any element that fails to
// read. Each call to the returned sequence starts over from the count.
func (h Handle[T]) Iterate(proc process.ProcessRead) iter.Seq[T] {
	return func(yield func(T) bool) {
		n, err := h.cappedCount(proc)
		if err != nil {
			log.Debugln("array iterate:", err)
			return
		}

		stride := h.Stride()
		data := h.Base.Add(DataOffset)
		for i := range n {
			element, err := pod.ReadT[T](proc, data.Add(stride*process.ProcessMemorySize(i)))
			if err != nil {
				continue
			}
			if !yield(element) {
				return
			}
		}
	}
}

// Resolver reads one record from an address held in an array
type Resolver[U any] func(proc process.ProcessRead, addr process.ProcessMemoryAddress) (U, error)

// ReadClass treats every element as the address of a managed object and
// resolves each one. The first failure fails the whole call.
func ReadClass[U any](proc process.ProcessRead, h Handle[process.ProcessMemoryAddress], resolve Resolver[U]) ([]U, error) {
	addrs, err := h.ReadAll(proc)
	if err != nil {
		return nil, err
	}

	result := make([]U, 0, len(addrs))
	for i, addr := range addrs {
		record, err := resolve(proc, addr)
		if err != nil {
			return nil, fmt.Errorf("array at %s element %d (%s): %w", h.Base, i, addr, err)
		}
		result = append(result, record)
	}

	return result, nil
}
