package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Timer backends accepted by BOSPLIT_TIMER
const (
	TimerLiveSplit = "livesplit"
	TimerLog       = "log"
)

// Runtime is process-level configuration read from the environment and
// overridden by command-line flags.
type Runtime struct {
	Process        string        `env:"BOSPLIT_PROCESS" envDefault:"Bo.exe"`
	Layout         string        `env:"BOSPLIT_LAYOUT" envDefault:"layout.yaml"`
	Settings       string        `env:"BOSPLIT_SETTINGS" envDefault:"settings.yaml"`
	Ledger         string        `env:"BOSPLIT_LEDGER" envDefault:"bosplit.db"`
	PollInterval   time.Duration `env:"BOSPLIT_POLL_INTERVAL" envDefault:"16ms"`
	AttachInterval time.Duration `env:"BOSPLIT_ATTACH_INTERVAL" envDefault:"1s"`
	Timer          string        `env:"BOSPLIT_TIMER" envDefault:"livesplit"`
	LiveSplitAddr  string        `env:"BOSPLIT_LIVESPLIT_ADDR" envDefault:"localhost:16834"`
	// StallTicks is how many successful reads with an unchanged play time
	// pause game time
	StallTicks int `env:"BOSPLIT_STALL_TICKS" envDefault:"2"`
}

// ParseRuntime loads Runtime from environment variables and validates it
func ParseRuntime() (Runtime, error) {
	cfg, err := LoadRuntime()
	if err != nil {
		return Runtime{}, err
	}
	return cfg, cfg.Validate()
}

// LoadRuntime loads Runtime without validating it, for callers that apply
// overrides first.
func LoadRuntime() (Runtime, error) {
	var cfg Runtime
	if err := env.Parse(&cfg); err != nil {
		return Runtime{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (r Runtime) Validate() error {
	if strings.TrimSpace(r.Process) == "" {
		return fmt.Errorf("process name is required")
	}
	if r.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", r.PollInterval)
	}
	if r.AttachInterval <= 0 {
		return fmt.Errorf("attach interval must be positive, got %s", r.AttachInterval)
	}
	if r.StallTicks < 1 {
		return fmt.Errorf("stall ticks must be at least 1, got %d", r.StallTicks)
	}
	switch r.Timer {
	case TimerLiveSplit, TimerLog:
	default:
		return fmt.Errorf("unknown timer %q: must be %s or %s", r.Timer, TimerLiveSplit, TimerLog)
	}
	return nil
}
