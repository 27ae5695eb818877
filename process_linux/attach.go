//go:build linux

package process_linux

import (
	"context"
	"fmt"
	"time"

	"bosplit/process"
)

// Attacher opens processes by name and tracks whether they are still running
type Attacher struct {
	Finder   *LinuxProcessFinder
	Interval time.Duration
	open     func(pid process.ProcessID) (process.Process, error)
}

// NewAttacher returns an Attacher polling procfs every interval
func NewAttacher(interval time.Duration) *Attacher {
	return &Attacher{
		Finder:   NewProcessFinder(),
		Interval: interval,
		open:     NewWithPID,
	}
}

// WaitAttach blocks until a process called name can be opened or ctx is done.
// The lowest matching PID wins so repeated attaches are deterministic.
func (a *Attacher) WaitAttach(ctx context.Context, name string) (process.Process, error) {
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()

	for {
		processes, err := a.Finder.FindProcessByName(name)
		if err != nil {
			return nil, fmt.Errorf("find %s: %w", name, err)
		}

		for _, info := range processes {
			proc, err := a.open(info.PID)
			if err == nil {
				return proc, nil
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Alive reports whether the attached process is still running
func (a *Attacher) Alive(proc process.Process) bool {
	return a.Finder.Alive(proc.GetPID())
}
