//go:build linux

package main

import (
	"fmt"
	"time"

	"bosplit/process"
	"bosplit/process_linux"
	"bosplit/splitter"
)

func newAttacher(interval time.Duration) splitter.Attacher {
	return process_linux.NewAttacher(interval)
}

// openProcess opens pid, or the lowest PID running name when pid is 0
func openProcess(name string, pid int) (process.Process, error) {
	if pid == 0 {
		found, err := process_linux.NewProcessFinder().FindProcessByName(name)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no process named %s", name)
		}
		pid = int(found[0].PID)
	}
	return process_linux.NewWithPID(process.ProcessID(pid))
}
