package tracker

import (
	"cmp"
	"fmt"
	"slices"

	"bosplit/process"
)

// CollectionReader reads every element of a remote collection at addr.
// It must fail as a whole rather than return a partial list.
type CollectionReader[T any] func(proc process.ProcessRead, addr process.ProcessMemoryAddress) ([]T, error)

// Collection tracks a homogeneous remote list. Elements are ordered by a
// discriminant key, then by the optional tie-break, then by their printed
// value, and matched to the previous read by slot, so the remote array
// order does not matter.
//
// A slot is the key plus the element's ordinal among elements sharing that
// key. A slot absent from the previous read is a baseline.
type Collection[T comparable] struct {
	name     string
	read     CollectionReader[T]
	key      func(T) string
	tieBreak func(a, b T) int

	addr        process.ProcessMemoryAddress
	slots       map[string]T
	order       []string
	hasSnapshot bool
}

// NewCollection creates a collection keyed by key. tieBreak may be nil.
func NewCollection[T comparable](name string, read CollectionReader[T], key func(T) string, tieBreak func(a, b T) int) *Collection[T] {
	return &Collection[T]{
		name:     name,
		read:     read,
		key:      key,
		tieBreak: tieBreak,
	}
}

func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) State() State {
	switch {
	case c.addr.IsNull():
		return Unbound
	case !c.hasSnapshot:
		return BoundNoSnapshot
	}
	return BoundSnapshotted
}

func (c *Collection[T]) Address() process.ProcessMemoryAddress {
	return c.addr
}

func (c *Collection[T]) Bind(addr process.ProcessMemoryAddress) bool {
	if addr == c.addr {
		return false
	}
	c.addr = addr
	c.dropSnapshot()
	return true
}

func (c *Collection[T]) Reset() {
	c.addr = 0
	c.dropSnapshot()
}

func (c *Collection[T]) dropSnapshot() {
	c.slots = nil
	c.order = nil
	c.hasSnapshot = false
}

// Elements returns the last accepted elements in slot order
func (c *Collection[T]) Elements() []T {
	out := make([]T, 0, len(c.order))
	for _, slot := range c.order {
		out = append(out, c.slots[slot])
	}
	return out
}

// Slot returns the element last seen in slot
func (c *Collection[T]) Slot(slot string) (T, bool) {
	v, ok := c.slots[slot]
	return v, ok
}

func (c *Collection[T]) Poll(proc process.ProcessRead) ([]Transition, error) {
	if c.addr.IsNull() {
		return nil, nil
	}

	elements, err := c.read(proc, c.addr)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", c.name, c.addr, err)
	}

	order, slots := c.arrange(elements)

	var transitions []Transition
	if c.hasSnapshot {
		for _, slot := range order {
			prev, seen := c.slots[slot]
			if !seen {
				continue
			}
			transitions = append(transitions, Diff(c.name, slot, prev, slots[slot])...)
		}
	}

	c.order = order
	c.slots = slots
	c.hasSnapshot = true
	return transitions, nil
}

func (c *Collection[T]) arrange(elements []T) ([]string, map[string]T) {
	type keyed struct {
		key     string
		repr    string
		element T
	}

	sorted := make([]keyed, len(elements))
	for i, e := range elements {
		sorted[i] = keyed{key: c.key(e), repr: fmt.Sprintf("%+v", e), element: e}
	}

	// Elements printing the same are equal, so their relative order is moot
	slices.SortFunc(sorted, func(a, b keyed) int {
		if r := cmp.Compare(a.key, b.key); r != 0 {
			return r
		}
		if c.tieBreak != nil {
			if r := c.tieBreak(a.element, b.element); r != 0 {
				return r
			}
		}
		return cmp.Compare(a.repr, b.repr)
	})

	order := make([]string, 0, len(sorted))
	slots := make(map[string]T, len(sorted))
	ordinals := make(map[string]int)
	for _, k := range sorted {
		slot := k.key
		if n := ordinals[k.key]; n > 0 {
			slot = fmt.Sprintf("%s#%d", k.key, n)
		}
		ordinals[k.key]++

		order = append(order, slot)
		slots[slot] = k.element
	}

	return order, slots
}
