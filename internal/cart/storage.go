package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrCorruptSnapshot signals that the persisted cart payload could not
// be decoded. The store treats it as an empty cart rather than failing.
var ErrCorruptSnapshot = errors.New("corrupt cart snapshot")

// Storage persists the full cart snapshot for one session/device. The
// record is rewritten on every mutation and read back once at startup.
type Storage interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

// MemoryStorage keeps the snapshot in process memory. Used in tests and
// as the ephemeral backend.
type MemoryStorage struct {
	mu    sync.Mutex
	items []Item
	set   bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load(ctx context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return nil, nil
	}
	return append([]Item(nil), m.items...), nil
}

func (m *MemoryStorage) Save(ctx context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append([]Item(nil), items...)
	m.set = true
	return nil
}
