package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/chainpress/paywall/types"
)

// Memory is a thread-safe in-memory Catalog.
type Memory struct {
	mu       sync.RWMutex
	contents map[string]*types.Content
}

// NewMemory creates a catalog holding the given contents.
func NewMemory(contents ...*types.Content) *Memory {
	m := &Memory{contents: make(map[string]*types.Content, len(contents))}
	for _, c := range contents {
		m.contents[c.ID] = c
	}
	return m
}

// Add inserts or replaces a content entry.
func (m *Memory) Add(c *types.Content) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contents[c.ID] = c
}

// Lookup returns the content for the given id, or a NOT_FOUND error.
func (m *Memory) Lookup(ctx context.Context, contentID string) (*types.Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.contents[contentID]
	if !ok {
		return nil, &types.PaywallError{
			Code:    types.ErrNotFound,
			Message: fmt.Sprintf("content %s not found", contentID),
		}
	}
	clone := *c
	return &clone, nil
}

// BumpReads increments the read counter for a content entry.
func (m *Memory) BumpReads(ctx context.Context, contentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contents[contentID]
	if !ok {
		return &types.PaywallError{
			Code:    types.ErrNotFound,
			Message: fmt.Sprintf("content %s not found", contentID),
		}
	}
	c.Reads++
	return nil
}
