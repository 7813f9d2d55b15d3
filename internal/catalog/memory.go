package catalog

import (
	"context"
	"sync"
)

// Memory is an in-memory Lookup for tests and local development.
type Memory struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewMemory builds a memory lookup seeded with the given products.
func NewMemory(products ...Product) *Memory {
	m := &Memory{products: make(map[string]Product, len(products))}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

// Put inserts or replaces a product.
func (m *Memory) Put(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

// Products returns the known subset of the requested IDs.
func (m *Memory) Products(_ context.Context, ids []string) (map[string]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]Product, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

var _ Lookup = (*Memory)(nil)
