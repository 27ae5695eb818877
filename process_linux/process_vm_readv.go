//go:build linux

package process_linux

import (
	"fmt"
	"time"
	"unsafe"

	"bosplit/process"

	"golang.org/x/sys/unix"
)

// process_vm_readv uses the process_vm_readv syscall to read memory from another process
func process_vm_readv(
	pid process.ProcessID,
	remoteAddr process.ProcessMemoryAddress,
	bytesToRead process.ProcessMemorySize,
) ([]byte, error) {
	localBuf := make([]byte, bytesToRead)
	if bytesToRead == 0 {
		return localBuf, nil
	}

	localIov := unix.Iovec{
		Base: &localBuf[0],
		Len:  uint64(bytesToRead),
	}

	remoteIov := unix.RemoteIovec{
		Base: uintptr(remoteAddr),
		Len:  int(bytesToRead),
	}

	n, _, errno := unix.Syscall6(
		unix.SYS_PROCESS_VM_READV,
		uintptr(pid),                        // Remote process PID
		uintptr(unsafe.Pointer(&localIov)),  // Local iovec
		uintptr(1),                          // Number of local iovecs
		uintptr(unsafe.Pointer(&remoteIov)), // Remote iovec
		uintptr(1),                          // Number of remote iovecs
		uintptr(0),                          // Flags (reserved)
	)

	if errno != 0 {
		// ESRCH: the process is gone, EFAULT: the range was unmapped under us
		if errno == unix.ESRCH {
			return nil, fmt.Errorf("process_vm_readv: %s: %w", errno.Error(), process.ErrProcessNotOpen)
		}
		return nil, fmt.Errorf("process_vm_readv: %s (errno: %d): %w", errno.Error(), errno, process.ErrAddressNotMapped)
	}

	// A short copy is discarded, callers never see a partially filled buffer
	if int(n) != int(bytesToRead) {
		return nil, fmt.Errorf("process_vm_readv: %d of %d bytes: %w", n, bytesToRead, process.ErrPartialRead)
	}

	return localBuf, nil
}

// ReadMemory reads memory from the process at the specified address
func (p *LinuxProcess) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	p.mu.Lock()
	pid := p.pid
	valid := pid != 0 && p.isValidRangeInternal(addr, size)
	stale := time.Since(p.mmUpdated) > mapRefreshInterval
	// Release the lock before the system call
	p.mu.Unlock()

	if pid == 0 {
		return nil, process.ErrProcessNotOpen
	}

	// The heap grows while the game runs; give new mappings one chance
	if !valid && stale {
		if err := p.UpdateMemoryMap(); err == nil {
			p.mu.Lock()
			valid = p.isValidRangeInternal(addr, size)
			p.mu.Unlock()
		}
	}

	if !valid {
		return nil, fmt.Errorf("read 0x%x+%d: %w", uint64(addr), size, process.ErrAddressNotMapped)
	}

	return process_vm_readv(pid, addr, size)
}
