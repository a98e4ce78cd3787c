package store

import (
	"context"
	"sync"

	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// Memory is an in-process store. It is the reference backend for tests.
type Memory struct {
	mu        sync.RWMutex
	data      types.Snapshot
	listeners listeners

	// FailWrites makes every Set return this error when non-nil
	FailWrites error
}

// NewMemory creates a store seeded with initial
func NewMemory(initial types.Snapshot) *Memory {
	data := initial.Clone()
	data.Normalize()
	return &Memory{data: data}
}

// Get returns a deep copy of the requested keys
func (m *Memory) Get(ctx context.Context, keys ...types.Key) (types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return types.Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return project(m.data, keys), nil
}

// Set replaces the written keys and notifies listeners
func (m *Memory) Set(ctx context.Context, p types.Partial) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	if m.FailWrites != nil {
		m.mu.Unlock()
		return m.FailWrites
	}
	p.Apply(&m.data)
	m.data.Normalize()
	m.mu.Unlock()

	m.listeners.notify(types.Change{Keys: p.Keys()})
	return nil
}

// OnChange registers a change listener
func (m *Memory) OnChange(l Listener) func() {
	return m.listeners.add(l)
}

// Close is a no-op for the memory store
func (m *Memory) Close() error {
	return nil
}
