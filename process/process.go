// Package process provides interfaces and types for reading the memory of another process
package process

import "errors"

// Types live in:
// - types.go: ProcessID, ProcessInfo
// - process_state.go: ProcessState constants
// - memory_types.go: ProcessMemoryAddress, ProcessMemorySize
// - process_interface.go: Process, ProcessRead, Blob
// - process_finder.go: ProcessFinder
// - path.go: pointer path reads

var (
	// ErrAddressNotMapped is returned when a memory address is not found within any mapped region of a process.
	ErrAddressNotMapped = errors.New("address not mapped")

	// ErrProcessNotOpen is returned when an operation requiring an open process is attempted
	// before the process has been successfully opened or after it has been closed.
	ErrProcessNotOpen = errors.New("process not open")

	ErrInvalidPointer = errors.New("invalid pointer read")

	// ErrPartialRead is returned when the kernel copied fewer bytes than requested.
	ErrPartialRead = errors.New("partial read")

	// ErrStructuralMismatch is returned when decoded lengths, strides or alignment
	// cannot describe a valid remote object.
	ErrStructuralMismatch = errors.New("structural mismatch")
)

// IsReadFailure reports whether err belongs to the recoverable read failure family:
// the value could not be read this time but may be readable on the next attempt.
func IsReadFailure(err error) bool {
	return errors.Is(err, ErrAddressNotMapped) ||
		errors.Is(err, ErrProcessNotOpen) ||
		errors.Is(err, ErrInvalidPointer) ||
		errors.Is(err, ErrPartialRead) ||
		errors.Is(err, ErrStructuralMismatch)
}
