package timer

import (
	"context"
	"sync"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Log is a timer that only logs and remembers what it was told. It keeps
// its own phase so a run can be followed without LiveSplit.
type Log struct {
	mu     sync.Mutex
	phase  Phase
	paused bool
	calls  []string
	log    *logger.Logger
}

func NewLog() *Log {
	return &Log{
		log: logger.NewLogger(coloransi.Color(coloransi.Black, coloransi.ColorTeal, "timer")),
	}
}

func (t *Log) record(call string) {
	t.calls = append(t.calls, call)
	t.log.Infoln(call)
}

func (t *Log) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == PhaseNotRunning {
		t.phase = PhaseRunning
	}
	t.record("start")
	return nil
}

func (t *Log) Split(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.record("split")
	return nil
}

func (t *Log) PauseGameTime(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = true
	t.record("pause")
	return nil
}

func (t *Log) ResumeGameTime(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = false
	t.record("resume")
	return nil
}

func (t *Log) Phase(ctx context.Context) (Phase, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase, nil
}

func (t *Log) Close() error {
	return nil
}

// SetPhase moves the timer to p, e.g. when a run is reset by hand
func (t *Log) SetPhase(p Phase) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phase = p
}

// Calls returns every call made so far
func (t *Log) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

// GameTimePaused reports whether game time is currently paused
func (t *Log) GameTimePaused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}
