package process_blob

import (
	"encoding/binary"
	"fmt"

	"bosplit/process"
)

// RawReader reads size bytes at addr, all-or-nothing
type RawReader func(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error)

// Reader implements process.ProcessRead on top of a RawReader.
// Process implementations embed it so typed reads are decoded in one place.
type Reader struct {
	raw RawReader
}

var _ process.ProcessRead = Reader{}

func NewReader(raw RawReader) Reader {
	return Reader{raw: raw}
}

func (r Reader) read(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if r.raw == nil {
		return nil, process.ErrProcessNotOpen
	}
	data, err := r.raw(addr, size)
	if err != nil {
		return nil, err
	}
	if len(data) < int(size) {
		return nil, fmt.Errorf("read %d of %d bytes at 0x%x: %w", len(data), size, uint64(addr), process.ErrPartialRead)
	}
	return data, nil
}

// ReadUINT32 reads an unsigned 32-bit integer from the specified address
func (r Reader) ReadUINT32(addr process.ProcessMemoryAddress) (uint32, error) {
	data, err := r.read(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(data), nil
}

// ReadNTS reads a null-terminated string from the specified address with a maximum length
func (r Reader) ReadNTS(addr process.ProcessMemoryAddress, maxLength process.ProcessMemorySize) (string, error) {
	if maxLength == 0 {
		return "", nil
	}

	data, err := r.read(addr, maxLength)
	if err != nil {
		return "", err
	}

	for i, b := range data {
		if b == 0 {
			return string(data[:i]), nil
		}
	}

	// No terminator inside maxLength, return the whole buffer
	return string(data), nil
}

// ReadPOINTER reads a pointer value from the specified address
func (r Reader) ReadPOINTER(addr process.ProcessMemoryAddress) (process.ProcessMemoryAddress, error) {
	if addr.IsNull() {
		return 0, fmt.Errorf("read pointer at 0x0: %w", process.ErrInvalidPointer)
	}

	data, err := r.read(addr, process.PointerSize)
	if err != nil {
		return 0, err
	}

	return process.ProcessMemoryAddress(binary.LittleEndian.Uint64(data)), nil
}

// ReadBlob reads a blob of memory from the specified address with the given size
func (r Reader) ReadBlob(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) (process.Blob, error) {
	if size == 0 {
		return NewProcessBlob(addr, []byte{}), nil
	}

	data, err := r.read(addr, size)
	if err != nil {
		return nil, err
	}

	return NewProcessBlob(addr, data[:size]), nil
}
