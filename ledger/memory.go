package ledger

import (
	"context"
	"maps"
	"sync"
)

// MemoryBackend keeps the ledger in process memory. Err, when set, is
// returned by every write.
type MemoryBackend struct {
	mu   sync.Mutex
	snap Snapshot
	Err  error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{snap: Snapshot{Entries: map[string]bool{}}}
}

func (m *MemoryBackend) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Epoch: m.snap.Epoch, Entries: maps.Clone(m.snap.Entries)}, nil
}

func (m *MemoryBackend) Put(ctx context.Context, key string, fired bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.snap.Entries[key] = fired
	return nil
}

func (m *MemoryBackend) Replace(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.snap = Snapshot{Epoch: snap.Epoch, Entries: maps.Clone(snap.Entries)}
	if m.snap.Entries == nil {
		m.snap.Entries = map[string]bool{}
	}
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
