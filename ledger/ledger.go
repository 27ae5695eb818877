// Package ledger records which milestones already fired in the current run
// so each one is announced at most once per epoch.
package ledger

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/google/uuid"
)

// Snapshot is the persisted form of a ledger
type Snapshot struct {
	Epoch   string
	Entries map[string]bool
}

// Backend is durable key/fired storage
type Backend interface {
	Load(ctx context.Context) (Snapshot, error)
	// Put persists one entry of the current epoch
	Put(ctx context.Context, key string, fired bool) error
	// Replace overwrites everything with snap
	Replace(ctx context.Context, snap Snapshot) error
	Close() error
}

// Ledger is owned by the polling loop; it is not safe for concurrent use.
// Once a key is recorded as fired it stays fired until ResetEpoch.
type Ledger struct {
	backend Backend
	epoch   string
	entries map[string]bool
	log     *logger.Logger
}

// Open loads the ledger from backend, starting a first epoch if the
// backend is empty.
func Open(ctx context.Context, backend Backend) (*Ledger, error) {
	l := &Ledger{
		backend: backend,
		entries: make(map[string]bool),
		log:     logger.NewLogger(coloransi.Color(coloransi.Black, coloransi.ColorLimeGreen, "ledger")),
	}

	if err := l.Load(ctx); err != nil {
		return nil, err
	}

	if l.epoch == "" {
		l.epoch = newEpoch()
		if err := l.Store(ctx); err != nil {
			return nil, err
		}
		l.log.Infoln("Started epoch", l.epoch)
	}

	return l, nil
}

func newEpoch() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Load replaces the in-memory state with the backend's
func (l *Ledger) Load(ctx context.Context) error {
	snap, err := l.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	l.epoch = snap.Epoch
	l.entries = make(map[string]bool, len(snap.Entries))
	maps.Copy(l.entries, snap.Entries)
	return nil
}

// Store persists the whole in-memory state
func (l *Ledger) Store(ctx context.Context) error {
	if err := l.backend.Replace(ctx, l.snapshot()); err != nil {
		return fmt.Errorf("store ledger: %w", err)
	}
	return nil
}

func (l *Ledger) snapshot() Snapshot {
	return Snapshot{Epoch: l.epoch, Entries: maps.Clone(l.entries)}
}

func (l *Ledger) Close() error {
	return l.backend.Close()
}

func (l *Ledger) Epoch() string {
	return l.epoch
}

// Insert sets an entry in memory only; call Store to persist it
func (l *Ledger) Insert(key string, fired bool) {
	l.entries[key] = fired
}

// Get returns the entry for key and whether it exists
func (l *Ledger) Get(key string) (fired bool, ok bool) {
	fired, ok = l.entries[key]
	return fired, ok
}

func (l *Ledger) Keys() []string {
	return slices.Sorted(maps.Keys(l.entries))
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

// ShouldFire is true when key is absent or not yet fired
func (l *Ledger) ShouldFire(key string) bool {
	return !l.entries[key]
}

// RecordFired marks key as fired. The entry is persisted before it is set in
// memory: on error the caller must not announce the milestone.
func (l *Ledger) RecordFired(ctx context.Context, key string) error {
	if l.entries[key] {
		return nil
	}

	if err := l.backend.Put(ctx, key, true); err != nil {
		return fmt.Errorf("record %s: %w", key, err)
	}

	l.entries[key] = true
	return nil
}

// ResetEpoch clears every entry and starts a new epoch. The in-memory reset
// happens even if persisting it fails.
func (l *Ledger) ResetEpoch(ctx context.Context) error {
	for key := range l.entries {
		l.entries[key] = false
	}
	l.epoch = newEpoch()
	l.log.Infoln("Started epoch", l.epoch, "with", len(l.entries), "keys")

	return l.Store(ctx)
}

// Reconcile adds every key in keys that the ledger does not know about as
// not fired. Keys the ledger has but keys lacks are left alone.
func (l *Ledger) Reconcile(ctx context.Context, keys []string) (int, error) {
	added := 0
	for _, key := range keys {
		if _, ok := l.entries[key]; !ok {
			l.entries[key] = false
			added++
		}
	}

	if added == 0 {
		return 0, nil
	}

	l.log.Infoln("Reconciled ledger, added", added, "keys")
	return added, l.Store(ctx)
}
