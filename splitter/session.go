package splitter

import (
	"context"
	"fmt"
	"slices"
	"time"

	"bosplit/binder"
	"bosplit/dispatch"
	"bosplit/game"
	"bosplit/process"
	"bosplit/tracker"
)

// Scenes between which a new run starts
const (
	SceneMainMenu = "New Main Menu"
	SceneIntro    = "CBF Intro"
)

// session is everything bound to one attached process
type session struct {
	s          *Splitter
	proc       process.Process
	layout     *binder.Layout
	engine     *tracker.Engine
	nodes      *game.Nodes
	keyer      *game.BossKeyer
	dispatcher *dispatch.Dispatcher
	loads      loadRemover

	rootStale bool
	scene     string
}

func newSession(ctx context.Context, s *Splitter, proc process.Process, layout *binder.Layout) (*session, error) {
	classes, err := game.Bind(layout)
	if err != nil {
		return nil, err
	}

	if _, err := layout.Instance(game.ClassGameManager); err != nil {
		return nil, err
	}

	sess := &session{
		s:      s,
		proc:   proc,
		layout: layout,
		engine: tracker.NewEngine(),
		keyer:  game.NewBossKeyer(s.settings.Current().BossAliases),
		loads:  loadRemover{stallTicks: s.cfg.StallTicks},
	}

	if sess.nodes, err = game.Track(sess.engine, classes, sess.keyer); err != nil {
		return nil, err
	}

	notify := dispatch.NotifierFunc(func(ev dispatch.Event) {
		if err := s.timer.Split(ctx); err != nil {
			s.log.Warn("Split", ev.Key, "not delivered:", err)
		}
	})
	if sess.dispatcher, err = dispatch.New(game.Rules(), notify); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Reconcile(ctx, sess.dispatcher.Keys()); err != nil {
		s.log.Warn("Persisting reconciled ledger failed:", err)
	}

	return sess, nil
}

// run ticks until the process exits or ctx is done
func (sess *session) run(ctx context.Context) error {
	ticker := time.NewTicker(sess.s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if !sess.s.attacher.Alive(sess.proc) {
			return nil
		}

		sess.tick(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tick runs one polling pass and returns the events it raised
func (sess *session) tick(ctx context.Context) []dispatch.Event {
	s := sess.s

	changed, err := s.settings.Reload()
	if err != nil {
		s.log.Warn("Settings:", err)
	}
	current := s.settings.Current()
	sess.keyer.SetAliases(current.BossAliases)
	if changed {
		if _, err := s.ledger.Reconcile(ctx, sess.dispatcher.Keys()); err != nil {
			s.log.Warn("Persisting reconciled ledger failed:", err)
		}
	}

	s.observePhase(ctx)

	sess.bindRoot()
	result := sess.engine.Tick(sess.proc)
	sess.rootStale = slices.Contains(result.Failed, game.ClassGameManager)
	for _, name := range result.Rebound {
		s.log.Debugln("rebound", name)
	}

	sess.removeLoads(ctx, result)
	sess.detectStart(ctx)

	return sess.dispatcher.Dispatch(ctx, result.Transitions, current, s.ledger)
}

// bindRoot resolves the GameManager singleton while it is unbound or its
// last read failed. The object is recreated when the game reloads.
func (sess *session) bindRoot() {
	gm := sess.nodes.GameManager
	if gm.State() != tracker.Unbound && !sess.rootStale {
		return
	}

	addr, err := sess.layout.ResolveInstance(sess.proc, game.ClassGameManager)
	if err != nil {
		sess.s.log.Debugln("GameManager:", err)
		return
	}
	if gm.Bind(addr) {
		sess.s.log.Infoln("GameManager at", addr)
	}
}

func (sess *session) removeLoads(ctx context.Context, result tracker.TickResult) {
	t := sess.s.timer

	// A new player object has its own clock
	if slices.Contains(result.Rebound, game.ClassBetaPlayerDataManager) {
		if sess.loads.paused {
			if err := t.ResumeGameTime(ctx); err != nil {
				sess.s.log.Warn("Resume game time:", err)
			}
		}
		sess.loads.reset()
	}

	if slices.Contains(result.Failed, game.ClassBetaPlayerDataManager) {
		return
	}
	data, ok := sess.nodes.PlayerData.Snapshot()
	if !ok {
		return
	}

	switch sess.loads.observe(data.TimePlayed) {
	case loadPause:
		sess.s.log.Debugln("play time stalled at", data.TimePlayed, "pausing game time")
		if err := t.PauseGameTime(ctx); err != nil {
			sess.s.log.Warn("Pause game time:", err)
		}
	case loadResume:
		sess.s.log.Debugln("play time moving again, resuming game time")
		if err := t.ResumeGameTime(ctx); err != nil {
			sess.s.log.Warn("Resume game time:", err)
		}
	}
}

// detectStart starts the timer when a new game leaves the main menu for
// the intro with a fresh play clock.
func (sess *session) detectStart(ctx context.Context) {
	if sess.layout.Scene == nil {
		return
	}

	path, err := sess.layout.ScenePath(sess.proc)
	if err != nil {
		sess.s.log.Debugln("scene:", err)
		return
	}

	name := binder.SceneName(path)
	if name == sess.scene {
		return
	}
	previous := sess.scene
	sess.scene = name
	sess.s.log.Infoln("Scene", fmt.Sprintf("%q", name))

	if previous != SceneMainMenu || name != SceneIntro {
		return
	}
	data, ok := sess.nodes.PlayerData.Snapshot()
	if !ok || data.TimePlayed >= 1 {
		return
	}

	sess.s.log.Infoln("New game started")
	if err := sess.s.timer.Start(ctx); err != nil {
		sess.s.log.Warn("Start timer:", err)
		return
	}
	sess.s.runStarted(ctx)
}
