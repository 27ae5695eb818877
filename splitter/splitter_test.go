package splitter

import (
	"context"
	"encoding/binary"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bosplit/binder"
	"bosplit/dispatch"
	"bosplit/game"
	"bosplit/ledger"
	"bosplit/process"
	"bosplit/process_blob"
	"bosplit/timer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	staticBlock  = 0x10F000
	sceneBlock   = 0x10E000
	sceneString  = 0x10E800
	gmAddr       = 0x100000
	questAddr    = 0x101000
	abilityAddr  = 0x102000
	invAddr      = 0x103000
	playerAddr   = 0x104000
	enemiesAddr  = 0x105000
	bossArray    = 0x106000
	kiriAddr     = 0x107000
	darumaMgr    = 0x108000
	darumaArray  = 0x109000
	chomperAddr  = 0x10A000
	testLayout   = "../game/testdata/layout.yaml"
	testGameName = "Bo.exe"
)

// world is a fake Bo.exe laid out the way testLayout describes
type world struct {
	t       *testing.T
	img     *process_blob.ProcessImage
	classes *game.Classes
	gm      game.GameManager
}

func newWorld(t *testing.T) *world {
	t.Helper()
	layout, err := binder.LoadLayout(testLayout)
	require.NoError(t, err)
	classes, err := game.Bind(layout)
	require.NoError(t, err)

	img := process_blob.NewProcessImage()
	require.NoError(t, img.Map(0x100000, 0x10000, "rw-p", ""))
	require.NoError(t, img.Map(0x400000, 0x3000, "r--p", `Z:\Games\Bo\GameAssembly.dll`))
	require.NoError(t, img.Map(0x500000, 0x3000, "r--p", `Z:\Games\Bo\UnityPlayer.dll`))

	w := &world{t: t, img: img, classes: classes}
	w.gm = game.GameManager{
		QuestManager:       questAddr,
		AbilityManager:     abilityAddr,
		InventoryContainer: invAddr,
		BetaDataManager:    playerAddr,
		EnemiesManager:     enemiesAddr,
		DarumaManager:      darumaMgr,
	}

	w.pointer(0x401000, staticBlock)
	w.pointer(staticBlock+0xb8, gmAddr)
	w.write(gmAddr, encode(t, classes.GameManager, w.gm))
	w.quests(game.QuestManager{})
	w.abilities(game.AbilityManager{})
	w.inventory(game.InventoryContainer{})
	w.player(0)
	w.write(enemiesAddr, encode(t, classes.EnemiesManager, game.EnemiesManager{Bosses: bossArray}))
	w.putUint32(bossArray+0x18, 1)
	w.pointer(bossArray+0x20, kiriAddr)
	w.boss(game.BossData{Boss: game.BossKiriKiriBozu, TotalHealth: 300})
	w.write(darumaMgr, encode(t, classes.DarumaManager, game.DarumaManager{AllDarumas: darumaArray}))
	w.putUint32(darumaArray+0x18, 1)
	w.pointer(darumaArray+0x20, chomperAddr)
	w.write(chomperAddr, encode(t, classes.Daruma, game.Daruma{Type: game.DarumaBite}))
	w.scene("Assets/Scenes/New Main Menu.unity")
	return w
}

func (w *world) write(addr process.ProcessMemoryAddress, data []byte) {
	require.NoError(w.t, w.img.WriteMemory(addr, data))
}

func (w *world) pointer(at, value process.ProcessMemoryAddress) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(value))
	w.write(at, buf)
}

func (w *world) putUint32(at process.ProcessMemoryAddress, value uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, value)
	w.write(at, buf)
}

func (w *world) quests(q game.QuestManager) {
	w.write(questAddr, encode(w.t, w.classes.QuestManager, q))
}

func (w *world) abilities(a game.AbilityManager) {
	w.write(abilityAddr, encode(w.t, w.classes.AbilityManager, a))
}

func (w *world) inventory(i game.InventoryContainer) {
	w.write(invAddr, encode(w.t, w.classes.InventoryContainer, i))
}

func (w *world) player(timePlayed float32) {
	w.write(playerAddr, encode(w.t, w.classes.BetaPlayerDataManager, game.BetaPlayerDataManager{TimePlayed: timePlayed}))
}

func (w *world) boss(b game.BossData) {
	w.write(kiriAddr, encode(w.t, w.classes.BossData, b))
}

func (w *world) scene(path string) {
	w.pointer(0x502000, sceneBlock)
	w.pointer(sceneBlock+0x48, sceneString)
	w.write(sceneString, append([]byte(path), 0))
}

// keepOpen survives Close so the same image can be attached again
type keepOpen struct {
	*process_blob.ProcessImage
}

func (keepOpen) Close() error {
	return nil
}

type fakeAttacher struct {
	img     *process_blob.ProcessImage
	alive   atomic.Bool
	mu      sync.Mutex
	attachs int
}

func (f *fakeAttacher) WaitAttach(ctx context.Context, name string) (process.Process, error) {
	f.mu.Lock()
	f.attachs++
	n := f.attachs
	f.mu.Unlock()

	if n > 1 && !f.alive.Load() {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return keepOpen{f.img}, nil
}

func (f *fakeAttacher) Alive(process.Process) bool {
	return f.alive.Load()
}

func (f *fakeAttacher) attaches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attachs
}

type harness struct {
	w        *world
	splitter *Splitter
	timer    *timer.Log
	ledger   *ledger.Ledger
	backend  *ledger.MemoryBackend
	attacher *fakeAttacher
	settings string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	w := newWorld(t)
	backend := ledger.NewMemoryBackend()
	l, err := ledger.Open(context.Background(), backend)
	require.NoError(t, err)

	h := &harness{
		w:        w,
		timer:    timer.NewLog(),
		ledger:   l,
		backend:  backend,
		attacher: &fakeAttacher{img: w.img},
		settings: filepath.Join(t.TempDir(), "settings.yaml"),
	}
	h.attacher.alive.Store(true)

	cfg := Config{
		Process:        testGameName,
		Layout:         testLayout,
		PollInterval:   time.Millisecond,
		AttachInterval: time.Millisecond,
		StallTicks:     2,
	}
	h.splitter = New(cfg, h.attacher, game.NewSettings(h.settings), l, h.timer)
	return h
}

func (h *harness) session(t *testing.T) *session {
	t.Helper()
	layout, err := binder.LoadLayout(testLayout)
	require.NoError(t, err)
	sess, err := newSession(context.Background(), h.splitter, h.w.img, layout)
	require.NoError(t, err)
	return sess
}

func keys(events []dispatch.Event) []string {
	var out []string
	for _, ev := range events {
		out = append(out, ev.Key)
	}
	return out
}

func countCalls(calls []string, call string) int {
	n := 0
	for _, c := range calls {
		if c == call {
			n++
		}
	}
	return n
}

func TestSessionReconcilesLedger(t *testing.T) {
	h := newHarness(t)
	h.session(t)

	for _, key := range game.SettingKeys() {
		fired, ok := h.ledger.Get(key)
		assert.True(t, ok, key)
		assert.False(t, fired, key)
	}
}

// Scenario A: an ability unlock splits exactly once even if the flag flaps.
func TestSessionAbilitySplitsOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess := h.session(t)

	assert.Empty(t, sess.tick(ctx), "first tick is a baseline")

	h.w.abilities(game.AbilityManager{CanDash: true})
	assert.Equal(t, []string{"can_dash"}, keys(sess.tick(ctx)))
	assert.Empty(t, sess.tick(ctx))

	h.w.abilities(game.AbilityManager{})
	assert.Empty(t, sess.tick(ctx))
	h.w.abilities(game.AbilityManager{CanDash: true})
	assert.Empty(t, sess.tick(ctx))

	assert.Equal(t, 1, countCalls(h.timer.Calls(), "split"))
	fired, _ := h.ledger.Get("can_dash")
	assert.True(t, fired)
}

func TestSessionCountedSplits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess := h.session(t)

	h.w.quests(game.QuestManager{ShimejiArmapillosCollected: 3})
	h.w.inventory(game.InventoryContainer{FeatherKeys: 1})
	h.w.boss(game.BossData{Boss: game.BossKiriKiriBozu, TotalHealth: 300, Defeated: true})
	sess.tick(ctx)

	h.w.quests(game.QuestManager{ShimejiArmapillosCollected: 4})
	h.w.inventory(game.InventoryContainer{FeatherKeys: 2})
	assert.ElementsMatch(t, []string{"shimeji_quest_end", "second_feather_key"}, keys(sess.tick(ctx)))
}

func TestSessionBossSplitFromList(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	require.NoError(t, writeFile(h.settings, "splits:\n  defeated_kirikiri_boss: true\n"))
	sess := h.session(t)

	sess.tick(ctx)
	h.w.boss(game.BossData{Boss: game.BossKiriKiriBozu, TotalHealth: 300, Defeated: true})
	assert.Equal(t, []string{"defeated_kirikiri_boss"}, keys(sess.tick(ctx)))
}

// Scenario B: a manager moving to an object that already has the flag set
// is a new baseline, not a transition.
func TestSessionRelocationIsBaseline(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess := h.session(t)
	sess.tick(ctx)

	const movedQuests = 0x10B000
	h.w.write(movedQuests, encode(t, h.w.classes.QuestManager, game.QuestManager{DefeatedPUA: true}))
	h.w.gm.QuestManager = movedQuests
	h.w.write(gmAddr, encode(t, h.w.classes.GameManager, h.w.gm))

	assert.Empty(t, sess.tick(ctx))
	assert.Empty(t, sess.tick(ctx))

	h.w.write(movedQuests, encode(t, h.w.classes.QuestManager, game.QuestManager{DefeatedPUA: true, DefeatedHashihime: true}))
	assert.Equal(t, []string{"defeat_hashihime_boss"}, keys(sess.tick(ctx)))
}

func TestSessionWaitsForGameManager(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.w.pointer(staticBlock+0xb8, 0)
	sess := h.session(t)

	assert.Empty(t, sess.tick(ctx))
	assert.Empty(t, sess.tick(ctx))

	h.w.pointer(staticBlock+0xb8, gmAddr)
	assert.Empty(t, sess.tick(ctx))
	h.w.abilities(game.AbilityManager{CanWallJump: true})
	assert.Equal(t, []string{"can_wall_jump"}, keys(sess.tick(ctx)))
}

func TestSessionLoadRemoval(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.w.player(10)
	sess := h.session(t)

	sess.tick(ctx)
	sess.tick(ctx)
	assert.False(t, h.timer.GameTimePaused())
	sess.tick(ctx)
	assert.True(t, h.timer.GameTimePaused())
	sess.tick(ctx)
	assert.Equal(t, 1, countCalls(h.timer.Calls(), "pause"))

	h.w.player(10.5)
	sess.tick(ctx)
	assert.False(t, h.timer.GameTimePaused())
	assert.Equal(t, 1, countCalls(h.timer.Calls(), "resume"))
}

func TestSessionLoadRemovalPlayerRelocated(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.w.player(10)
	sess := h.session(t)

	sess.tick(ctx)
	sess.tick(ctx)
	assert.False(t, h.timer.GameTimePaused())

	relocate := func(addr process.ProcessMemoryAddress, timePlayed float32) {
		h.w.write(addr, encode(t, h.w.classes.BetaPlayerDataManager, game.BetaPlayerDataManager{TimePlayed: timePlayed}))
		h.w.gm.BetaDataManager = addr
		h.w.write(gmAddr, encode(t, h.w.classes.GameManager, h.w.gm))
	}

	// the new object's first read is a baseline, not another stalled read
	relocate(0x10C000, 10)
	sess.tick(ctx)
	assert.False(t, h.timer.GameTimePaused())
	sess.tick(ctx)
	assert.False(t, h.timer.GameTimePaused())
	sess.tick(ctx)
	assert.True(t, h.timer.GameTimePaused())

	relocate(0x10D000, 10)
	sess.tick(ctx)
	assert.False(t, h.timer.GameTimePaused(), "moving while paused resumes")
	assert.Equal(t, 1, countCalls(h.timer.Calls(), "resume"))
}

func TestSessionStartsRunFromMainMenu(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess := h.session(t)

	sess.tick(ctx)
	h.w.scene("Assets/Scenes/CBF Intro.unity")
	sess.tick(ctx)
	assert.Equal(t, 1, countCalls(h.timer.Calls(), "start"))

	phase, err := h.timer.Phase(ctx)
	require.NoError(t, err)
	assert.Equal(t, timer.PhaseRunning, phase)
}

func TestSessionNoStartFromLoadedSave(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.w.player(3600)
	sess := h.session(t)

	sess.tick(ctx)
	h.w.scene("Assets/Scenes/CBF Intro.unity")
	sess.tick(ctx)
	assert.Zero(t, countCalls(h.timer.Calls(), "start"))
}

// Scenario D: resetting the timer starts a new epoch and milestones fire again.
func TestSessionTimerResetStartsEpoch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	opened := h.ledger.Epoch()
	sess := h.session(t)

	sess.tick(ctx)
	first := h.ledger.Epoch()
	assert.NotEqual(t, opened, first, "NotRunning at startup resets")

	require.NoError(t, h.timer.Start(ctx))
	h.w.abilities(game.AbilityManager{CanGrapple: true})
	assert.Equal(t, []string{"can_grapple"}, keys(sess.tick(ctx)))
	started := h.ledger.Epoch()
	assert.NotEqual(t, first, started, "a run started by hand resets")

	h.timer.SetPhase(timer.PhasePaused)
	sess.tick(ctx)
	h.timer.SetPhase(timer.PhaseRunning)
	sess.tick(ctx)
	assert.Equal(t, started, h.ledger.Epoch(), "pause and resume keep the epoch")
	assert.False(t, h.ledger.ShouldFire("can_grapple"))

	h.timer.SetPhase(timer.PhaseNotRunning)
	h.w.abilities(game.AbilityManager{})
	sess.tick(ctx)
	assert.NotEqual(t, started, h.ledger.Epoch())
	assert.True(t, h.ledger.ShouldFire("can_grapple"))

	h.w.abilities(game.AbilityManager{CanGrapple: true})
	assert.Equal(t, []string{"can_grapple"}, keys(sess.tick(ctx)))
}

func TestSessionMilestonesBeforeRunDoNotCount(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.w.player(5000)
	sess := h.session(t)
	sess.tick(ctx)

	// practice save, timer not running
	h.w.abilities(game.AbilityManager{CanDash: true})
	assert.Equal(t, []string{"can_dash"}, keys(sess.tick(ctx)))

	// back to the menu, then a new game
	h.w.abilities(game.AbilityManager{})
	h.w.player(0)
	sess.tick(ctx)
	h.w.scene("Assets/Scenes/CBF Intro.unity")
	sess.tick(ctx)
	require.Equal(t, 1, countCalls(h.timer.Calls(), "start"))
	assert.True(t, h.ledger.ShouldFire("can_dash"))

	h.w.abilities(game.AbilityManager{CanDash: true})
	assert.Equal(t, []string{"can_dash"}, keys(sess.tick(ctx)))
	assert.Equal(t, 2, countCalls(h.timer.Calls(), "split"))

	epoch := h.ledger.Epoch()
	sess.tick(ctx)
	assert.Equal(t, epoch, h.ledger.Epoch(), "a run the splitter started is not reset again")
}

func TestSessionPersistFailureSuppressesSplit(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess := h.session(t)
	sess.tick(ctx)

	h.backend.Err = assert.AnError
	h.w.abilities(game.AbilityManager{CanHover: true})
	assert.Empty(t, sess.tick(ctx))
	assert.Zero(t, countCalls(h.timer.Calls(), "split"))
}

func TestSessionCategoryPreset(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sess := h.session(t)
	sess.tick(ctx)

	h.w.boss(game.BossData{Boss: game.BossKiriKiriBozu, TotalHealth: 300, Defeated: true})
	assert.Empty(t, sess.tick(ctx), "kirikiri is off by default")

	require.NoError(t, writeFile(h.settings, "category: any_percent\n"))
	sess.tick(ctx)
	assert.True(t, h.splitter.settings.Current().Enabled("defeated_kirikiri_boss"))

	h.w.boss(game.BossData{Boss: game.BossKiriKiriBozu, TotalHealth: 300})
	sess.tick(ctx)
	h.w.boss(game.BossData{Boss: game.BossKiriKiriBozu, TotalHealth: 300, Defeated: true})
	assert.Equal(t, []string{"defeated_kirikiri_boss"}, keys(sess.tick(ctx)))
}

func TestRunRestartsAfterBindFailure(t *testing.T) {
	h := newHarness(t)
	calls := 0
	h.splitter.loadLayout = func(path string) (*binder.Layout, error) {
		calls++
		layout, err := binder.LoadLayout(path)
		if err != nil {
			return nil, err
		}
		if calls == 1 {
			delete(layout.Classes, game.ClassDaruma)
		}
		return layout, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.splitter.Run(ctx) }()

	require.Eventually(t, func() bool { return h.attacher.attaches() >= 2 }, time.Second, time.Millisecond)
	h.attacher.alive.Store(false)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReattachesAfterExit(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.splitter.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	h.attacher.alive.Store(false)
	require.Eventually(t, func() bool { return h.attacher.attaches() == 2 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
