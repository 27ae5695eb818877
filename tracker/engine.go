package tracker

import (
	"errors"
	"fmt"

	"bosplit/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	ErrUnknownOwner  = errors.New("owner not registered")
	ErrDuplicateNode = errors.New("node already registered")
)

// Node is anything the engine can poll: an Entity or a Collection
type Node interface {
	Name() string
	State() State
	Address() process.ProcessMemoryAddress
	Bind(addr process.ProcessMemoryAddress) bool
	Reset()
	Poll(proc process.ProcessRead) ([]Transition, error)
}

// Link extracts a dependent's address from its owner's current snapshot.
// ok is false while the owner has no snapshot.
type Link func() (addr process.ProcessMemoryAddress, ok bool)

// LinkField builds a Link that reads a pointer field out of owner's snapshot
func LinkField[O comparable](owner *Entity[O], field func(O) process.ProcessMemoryAddress) Link {
	return func() (process.ProcessMemoryAddress, bool) {
		snap, ok := owner.Snapshot()
		if !ok {
			return 0, false
		}
		return field(snap), true
	}
}

type node struct {
	Node
	owner string
	link  Link
}

// Engine polls nodes in registration order. A dependent can only be
// registered after its owner, so an owner is always read and diffed before
// its dependents and a moved pointer rebinds them in the same tick.
type Engine struct {
	nodes  []node
	byName map[string]int
	log    *logger.Logger
}

// TickResult holds everything one tick produced
type TickResult struct {
	Transitions []Transition
	Errors      []error
	Failed      []string
	Rebound     []string
}

func NewEngine() *Engine {
	return &Engine{
		byName: make(map[string]int),
		log:    logger.NewLogger(coloransi.Color(coloransi.White, coloransi.ColorIndigo, "tracker")),
	}
}

// Register adds a root node. Roots are bound by the caller.
func (e *Engine) Register(n Node) error {
	return e.add(node{Node: n})
}

// RegisterDependent adds n, bound through link to a field of owner
func (e *Engine) RegisterDependent(n Node, owner string, link Link) error {
	if _, ok := e.byName[owner]; !ok {
		return fmt.Errorf("register %s: %s: %w", n.Name(), owner, ErrUnknownOwner)
	}
	return e.add(node{Node: n, owner: owner, link: link})
}

func (e *Engine) add(n node) error {
	if _, ok := e.byName[n.Name()]; ok {
		return fmt.Errorf("register %s: %w", n.Name(), ErrDuplicateNode)
	}
	e.byName[n.Name()] = len(e.nodes)
	e.nodes = append(e.nodes, n)
	return nil
}

// Node returns a registered node by name
func (e *Engine) Node(name string) (Node, bool) {
	i, ok := e.byName[name]
	if !ok {
		return nil, false
	}
	return e.nodes[i].Node, true
}

// Names returns node names in polling order
func (e *Engine) Names() []string {
	names := make([]string, len(e.nodes))
	for i, n := range e.nodes {
		names[i] = n.Name()
	}
	return names
}

// Reset unbinds every node
func (e *Engine) Reset() {
	for _, n := range e.nodes {
		n.Reset()
	}
}

// Tick rebinds and polls every node once. Read failures are collected, not
// fatal: the failing node keeps its state and is retried next tick.
func (e *Engine) Tick(proc process.ProcessRead) TickResult {
	var result TickResult

	for _, n := range e.nodes {
		if n.link != nil {
			if addr, ok := n.link(); ok && n.Bind(addr) {
				e.log.Debugln("rebound", n.Name(), "to", addr)
				result.Rebound = append(result.Rebound, n.Name())
			}
		}

		transitions, err := n.Poll(proc)
		if err != nil {
			if errors.Is(err, process.ErrStructuralMismatch) {
				e.log.Warn("structural mismatch:", err)
			} else {
				e.log.Debugln("read failed:", err)
			}
			result.Errors = append(result.Errors, err)
			result.Failed = append(result.Failed, n.Name())
			continue
		}
		result.Transitions = append(result.Transitions, transitions...)
	}

	return result
}
