//go:build linux

package process_linux

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"bosplit/process"
)

// Alive reports whether pid still names a running, non-zombie process
func (f *LinuxProcessFinder) Alive(pid process.ProcessID) bool {
	if pid <= 0 || !procExists(f.Root, int(pid)) {
		return false
	}

	info, err := f.getProcessInfo(pid)
	if err != nil {
		// comm vanished between the stat and the read: the process is exiting
		return false
	}

	return !info.IsGone()
}

func procExists(root string, pid int) bool {
	_, err := os.Stat(filepath.Join(root, strconv.Itoa(pid)))
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	// For transient errors (permission, EIO): fall back to kill 0
	return syscall.Kill(pid, 0) == nil
}
