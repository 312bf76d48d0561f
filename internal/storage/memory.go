package storage

import (
	"context"
	"sync"

	"storypal-server/internal/models"
)

// Compile-time check to ensure MemoryGateway implements Gateway
var _ Gateway = (*MemoryGateway)(nil)

// MemoryGateway is a process-local Gateway. Used by tests and by runs that
// do not need durability.
type MemoryGateway struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryGateway creates an empty in-memory gateway.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{data: make(map[string][]byte)}
}

func (g *MemoryGateway) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	value, ok := g.data[key]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (g *MemoryGateway) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.data[key] = stored
	return nil
}

func (g *MemoryGateway) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.data, key)
	return nil
}

// Len reports the number of stored keys. Test helper.
func (g *MemoryGateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.data)
}
