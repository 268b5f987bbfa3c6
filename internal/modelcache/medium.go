package modelcache

import (
	"context"
	"sync"
)

// Medium stores serialised models by slot name.
// Read reports ok=false when the slot has never been written.
type Medium interface {
	Read(ctx context.Context, slot string) (data []byte, ok bool, err error)
	Write(ctx context.Context, slot string, data []byte) error
	Close() error
}

// MemoryMedium keeps slots in process memory.
type MemoryMedium struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{slots: make(map[string][]byte)}
}

func (m *MemoryMedium) Read(_ context.Context, slot string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.slots[slot]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryMedium) Write(_ context.Context, slot string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryMedium) Close() error { return nil }
