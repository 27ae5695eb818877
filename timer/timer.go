// Package timer drives the speedrun timer the splits are sent to.
package timer

import (
	"context"
	"fmt"
)

type Phase int

const (
	PhaseNotRunning Phase = iota
	PhaseRunning
	PhasePaused
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseNotRunning:
		return "NotRunning"
	case PhaseRunning:
		return "Running"
	case PhasePaused:
		return "Paused"
	case PhaseEnded:
		return "Ended"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ParsePhase parses the names returned by String
func ParsePhase(s string) (Phase, error) {
	for p := PhaseNotRunning; p <= PhaseEnded; p++ {
		if p.String() == s {
			return p, nil
		}
	}
	return PhaseNotRunning, fmt.Errorf("unknown timer phase %q", s)
}

// Timer is the host timer. Game time pause and resume only affect the
// load-removed comparison.
type Timer interface {
	Start(ctx context.Context) error
	Split(ctx context.Context) error
	PauseGameTime(ctx context.Context) error
	ResumeGameTime(ctx context.Context) error
	Phase(ctx context.Context) (Phase, error)
	Close() error
}
