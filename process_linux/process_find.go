//go:build linux

package process_linux

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"bosplit/process"
)

// LinuxProcessFinder implements the process.ProcessFinder interface over procfs
type LinuxProcessFinder struct {
	// Root is the procfs mount point, "/proc" unless a test points it elsewhere
	Root string
}

// NewProcessFinder creates a new LinuxProcessFinder
func NewProcessFinder() *LinuxProcessFinder {
	return &LinuxProcessFinder{Root: "/proc"}
}

// FindProcessByPID finds a process by its PID
func (f *LinuxProcessFinder) FindProcessByPID(pid process.ProcessID) (*process.ProcessInfo, error) {
	procPath := filepath.Join(f.Root, strconv.Itoa(int(pid)))

	if _, err := os.Stat(procPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("process with PID %d does not exist", pid)
	}

	return f.getProcessInfo(pid)
}

// FindProcessByName finds live processes whose comm, exe basename or argv[0]
// basename equals name. Wine processes carry their Windows image name only in
// argv[0] (e.g. "C:\Games\Bo\Bo.exe") and comm is truncated to 15 bytes, so
// every candidate is checked case-insensitively. Results are sorted by PID.
func (f *LinuxProcessFinder) FindProcessByName(name string) ([]process.ProcessInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("empty process name")
	}

	entries, err := os.ReadDir(f.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Root, err)
	}

	selfPID := os.Getpid()
	var results []process.ProcessInfo

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 || pid == selfPID {
			continue
		}

		info, err := f.getProcessInfo(process.ProcessID(pid))
		if err != nil {
			// Process may have terminated while we were reading
			continue
		}

		if info.IsGone() {
			continue
		}

		if matchesName(info, name) {
			results = append(results, *info)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].PID < results[j].PID
	})

	return results, nil
}

func matchesName(info *process.ProcessInfo, name string) bool {
	candidates := []string{info.Name}
	if info.Exe != "" {
		candidates = append(candidates, filepath.Base(info.Exe))
	}
	if len(info.Cmdline) > 0 {
		candidates = append(candidates, path.Base(strings.ReplaceAll(info.Cmdline[0], "\\", "/")))
	}

	for _, candidate := range candidates {
		if strings.EqualFold(candidate, name) {
			return true
		}
	}

	// comm is truncated to TASK_COMM_LEN-1 bytes
	if len(name) > 15 && strings.EqualFold(info.Name, name[:15]) {
		return true
	}

	return false
}

// getProcessInfo reads comm, exe, cmdline and status for one PID
func (f *LinuxProcessFinder) getProcessInfo(pid process.ProcessID) (*process.ProcessInfo, error) {
	procPath := filepath.Join(f.Root, strconv.Itoa(int(pid)))

	nameBytes, err := os.ReadFile(filepath.Join(procPath, "comm"))
	if err != nil {
		return nil, fmt.Errorf("failed to read process name: %w", err)
	}
	name := strings.TrimSpace(string(nameBytes))

	// Kernel threads and zombies have no exe
	exe, err := os.Readlink(filepath.Join(procPath, "exe"))
	if err != nil {
		exe = ""
	}

	cmdlineBytes, err := os.ReadFile(filepath.Join(procPath, "cmdline"))
	if err != nil {
		return nil, fmt.Errorf("failed to read process cmdline: %w", err)
	}

	var cmdline []string
	cmdlineBytes = bytes.TrimRight(cmdlineBytes, "\x00")
	if len(cmdlineBytes) > 0 {
		for _, arg := range bytes.Split(cmdlineBytes, []byte{0}) {
			cmdline = append(cmdline, string(arg))
		}
	}

	info := &process.ProcessInfo{
		PID:     pid,
		Name:    name,
		Exe:     exe,
		Cmdline: cmdline,
	}

	statusBytes, err := os.ReadFile(filepath.Join(procPath, "status"))
	if err == nil {
		for _, line := range strings.Split(string(statusBytes), "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)

			switch strings.TrimSpace(key) {
			case "PPid":
				if ppid, err := strconv.Atoi(value); err == nil {
					info.PPID = process.ProcessID(ppid)
				}
			case "State":
				if len(value) > 0 {
					info.State = process.ProcessState(value[0:1])
				}
			}
		}
	}

	return info, nil
}
