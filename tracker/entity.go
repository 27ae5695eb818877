// Package tracker keeps the last accepted snapshot of remote records and
// turns successive reads into field-level transitions.
package tracker

import (
	"fmt"

	"bosplit/process"
)

type State int

const (
	// Unbound: no address known
	Unbound State = iota
	// BoundNoSnapshot: address known, never read successfully since binding
	BoundNoSnapshot
	// BoundSnapshotted: address known, last good value cached
	BoundSnapshotted
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "Unbound"
	case BoundNoSnapshot:
		return "BoundNoSnapshot"
	case BoundSnapshotted:
		return "BoundSnapshotted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Transition is one field that changed between two successful reads of the
// same remote object.
type Transition struct {
	Entity   string
	Key      string // element slot for collections, empty otherwise
	Field    string
	Previous any
	Current  any
}

func (t Transition) String() string {
	if t.Key != "" {
		return fmt.Sprintf("%s[%s].%s: %v -> %v", t.Entity, t.Key, t.Field, t.Previous, t.Current)
	}
	return fmt.Sprintf("%s.%s: %v -> %v", t.Entity, t.Field, t.Previous, t.Current)
}

// Reader reads one record of type T at addr
type Reader[T any] func(proc process.ProcessRead, addr process.ProcessMemoryAddress) (T, error)

// Entity tracks a single remote object. If a snapshot is held it was read
// from the current address.
type Entity[T comparable] struct {
	name        string
	read        Reader[T]
	addr        process.ProcessMemoryAddress
	snapshot    T
	hasSnapshot bool
}

func NewEntity[T comparable](name string, read Reader[T]) *Entity[T] {
	return &Entity[T]{name: name, read: read}
}

func (e *Entity[T]) Name() string {
	return e.name
}

func (e *Entity[T]) State() State {
	switch {
	case e.addr.IsNull():
		return Unbound
	case !e.hasSnapshot:
		return BoundNoSnapshot
	}
	return BoundSnapshotted
}

func (e *Entity[T]) Address() process.ProcessMemoryAddress {
	return e.addr
}

// Snapshot returns the last accepted value
func (e *Entity[T]) Snapshot() (T, bool) {
	return e.snapshot, e.hasSnapshot
}

// Bind points the entity at addr. Binding to a different address drops the
// snapshot so the next read is a baseline; a null address unbinds. Reports
// whether anything changed.
func (e *Entity[T]) Bind(addr process.ProcessMemoryAddress) bool {
	if addr == e.addr {
		return false
	}
	e.addr = addr
	e.dropSnapshot()
	return true
}

// Reset returns the entity to Unbound
func (e *Entity[T]) Reset() {
	e.addr = 0
	e.dropSnapshot()
}

func (e *Entity[T]) dropSnapshot() {
	var zero T
	e.snapshot = zero
	e.hasSnapshot = false
}

// Poll re-reads the entity. The first read after binding is a baseline and
// yields nothing. A failed read leaves the state untouched.
func (e *Entity[T]) Poll(proc process.ProcessRead) ([]Transition, error) {
	if e.addr.IsNull() {
		return nil, nil
	}

	current, err := e.read(proc, e.addr)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", e.name, e.addr, err)
	}

	if !e.hasSnapshot {
		e.snapshot = current
		e.hasSnapshot = true
		return nil, nil
	}

	if current == e.snapshot {
		return nil, nil
	}

	transitions := Diff(e.name, "", e.snapshot, current)
	e.snapshot = current
	return transitions, nil
}
