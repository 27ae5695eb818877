package process

import (
	"fmt"
)

// PointerSize is the width of a pointer in the monitored 64-bit process
const PointerSize ProcessMemorySize = 8

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

func (pma ProcessMemoryAddress) ToString() string {
	return fmt.Sprintf("0x%X", uint64(pma))
}

func (pma ProcessMemoryAddress) String() string {
	return pma.ToString()
}

// IsNull reports whether the address is the null pointer
func (pma ProcessMemoryAddress) IsNull() bool {
	return pma == 0
}

// IsAligned reports whether the address is a multiple of align
func (pma ProcessMemoryAddress) IsAligned(align ProcessMemorySize) bool {
	if align == 0 {
		return true
	}
	return uint64(pma)%uint64(align) == 0
}

// Add returns the address offset by size bytes
func (pma ProcessMemoryAddress) Add(size ProcessMemorySize) ProcessMemoryAddress {
	return pma + ProcessMemoryAddress(size)
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}
