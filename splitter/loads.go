package splitter

// loadRemover pauses game time while the in-game clock stands still.
// The clock stops during loading screens.
type loadRemover struct {
	stallTicks int
	last       float32
	have       bool
	stalled    int
	paused     bool
}

type loadAction int

const (
	loadNone loadAction = iota
	loadPause
	loadResume
)

// observe takes one successful read of the clock
func (l *loadRemover) observe(timePlayed float32) loadAction {
	if !l.have {
		l.last = timePlayed
		l.have = true
		return loadNone
	}

	if timePlayed != l.last {
		l.last = timePlayed
		l.stalled = 0
		if l.paused {
			l.paused = false
			return loadResume
		}
		return loadNone
	}

	l.stalled++
	if !l.paused && l.stalled >= l.stallTicks {
		l.paused = true
		return loadPause
	}
	return loadNone
}

func (l *loadRemover) reset() {
	*l = loadRemover{stallTicks: l.stallTicks}
}
