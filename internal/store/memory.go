package store

import (
	"context"
	"sync"
)

type Memory struct {
	mu      sync.RWMutex
	current *Snapshot
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return nil, ErrEmpty
	}
	return clone(m.current), nil
}

func (m *Memory) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	Prepare(&snap)
	next := clone(&snap)

	m.mu.Lock()
	m.current = next
	m.mu.Unlock()

	return nil
}

func clone(s *Snapshot) *Snapshot {
	out := *s
	out.Data = append([]byte(nil), s.Data...)
	return &out
}
