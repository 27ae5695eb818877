//go:build !linux

package main

import (
	"context"
	"errors"
	"time"

	"bosplit/process"
	"bosplit/splitter"
)

var errUnsupported = errors.New("reading process memory is only supported on linux")

type unsupportedAttacher struct{}

func (unsupportedAttacher) WaitAttach(ctx context.Context, name string) (process.Process, error) {
	return nil, errUnsupported
}

func (unsupportedAttacher) Alive(process.Process) bool {
	return false
}

func newAttacher(time.Duration) splitter.Attacher {
	return unsupportedAttacher{}
}

func openProcess(string, int) (process.Process, error) {
	return nil, errUnsupported
}
