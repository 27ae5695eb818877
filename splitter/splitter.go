// Package splitter runs the polling session against the game process.
package splitter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bosplit/binder"
	"bosplit/ledger"
	"bosplit/process"
	"bosplit/settings"
	"bosplit/timer"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Attacher finds and opens the game process
type Attacher interface {
	WaitAttach(ctx context.Context, name string) (process.Process, error)
	Alive(proc process.Process) bool
}

type Config struct {
	Process        string
	Layout         string
	PollInterval   time.Duration
	AttachInterval time.Duration
	StallTicks     int
}

// ConfigFromRuntime copies the fields the splitter needs
func ConfigFromRuntime(r settings.Runtime) Config {
	return Config{
		Process:        r.Process,
		Layout:         r.Layout,
		PollInterval:   r.PollInterval,
		AttachInterval: r.AttachInterval,
		StallTicks:     r.StallTicks,
	}
}

// Splitter attaches to the game, runs one session per attach and survives
// the game restarting. The ledger is the only state shared by sessions.
type Splitter struct {
	cfg      Config
	attacher Attacher
	settings *settings.Source
	ledger   *ledger.Ledger
	timer    timer.Timer

	// last phase seen; starts unknown so the first NotRunning resets the epoch
	phase timer.Phase
	known bool

	loadLayout func(path string) (*binder.Layout, error)
	log        *logger.Logger
}

func New(cfg Config, attacher Attacher, src *settings.Source, l *ledger.Ledger, t timer.Timer) *Splitter {
	return &Splitter{
		cfg:        cfg,
		attacher:   attacher,
		settings:   src,
		ledger:     l,
		timer:      t,
		loadLayout: binder.LoadLayout,
		log:        logger.NewLogger(coloransi.Color(coloransi.White, coloransi.ColorOrange, "splitter")),
	}
}

// Run attaches and runs sessions until ctx is done. A bind failure ends
// the session and starts over from attaching; the layout file is read
// again each time.
func (s *Splitter) Run(ctx context.Context) error {
	for {
		s.log.Infoln("Waiting for", s.cfg.Process)
		proc, err := s.attacher.WaitAttach(ctx, s.cfg.Process)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("attach: %w", err)
		}
		s.log.Infoln("Attached to", s.cfg.Process, "pid", proc.GetPID())

		err = s.runSession(ctx, proc)
		proc.Close()

		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, binder.ErrBindFailure):
			s.log.Warn("Session aborted:", err)
			if !sleep(ctx, s.cfg.AttachInterval) {
				return ctx.Err()
			}
		case err != nil:
			return err
		default:
			s.log.Infoln("Process", s.cfg.Process, "exited")
		}
	}
}

func (s *Splitter) runSession(ctx context.Context, proc process.Process) error {
	layout, err := s.loadLayout(s.cfg.Layout)
	if err != nil {
		return fmt.Errorf("load layout: %w", err)
	}

	sess, err := newSession(ctx, s, proc, layout)
	if err != nil {
		return err
	}
	return sess.run(ctx)
}

// observePhase resets the epoch whenever the timer is seen going back to
// NotRunning, including the first observation, and when a run starts from
// NotRunning. Milestones reached outside a run never count for the next one.
func (s *Splitter) observePhase(ctx context.Context) {
	phase, err := s.timer.Phase(ctx)
	if err != nil {
		s.log.Debugln("timer phase:", err)
		return
	}

	switch {
	case phase == timer.PhaseNotRunning && (!s.known || s.phase != timer.PhaseNotRunning):
		s.resetEpoch(ctx, "timer not running")
	case phase == timer.PhaseRunning && s.known && s.phase == timer.PhaseNotRunning:
		s.resetEpoch(ctx, "run started")
	}
	s.phase = phase
	s.known = true
}

// runStarted is called after the splitter started the timer itself
func (s *Splitter) runStarted(ctx context.Context) {
	s.resetEpoch(ctx, "run started")
	s.phase = timer.PhaseRunning
	s.known = true
}

func (s *Splitter) resetEpoch(ctx context.Context, reason string) {
	if err := s.ledger.ResetEpoch(ctx); err != nil {
		s.log.Warn("Persisting epoch reset failed:", err)
	}
	s.log.Infoln("New epoch", s.ledger.Epoch(), "("+reason+")")
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
