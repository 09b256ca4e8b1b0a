package details

import (
	"context"
	"sync"
)

// MemoryCollection is an in-memory Collection.
type MemoryCollection struct {
	mu sync.RWMutex
	m  map[string]ShoppingCartDetails
}

// NewMemoryCollection creates an empty MemoryCollection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{m: make(map[string]ShoppingCartDetails)}
}

// Get implements Collection.
func (c *MemoryCollection) Get(ctx context.Context, shoppingCartID string) (ShoppingCartDetails, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.m[shoppingCartID]
	if !ok {
		return ShoppingCartDetails{}, ErrNotFound
	}
	return doc, nil
}

// Upsert implements Collection.
func (c *MemoryCollection) Upsert(ctx context.Context, doc ShoppingCartDetails) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Stale writers lose: a document only moves forward in revision.
	if cur, ok := c.m[doc.ShoppingCartID]; ok && cur.Revision >= doc.Revision {
		return nil
	}
	c.m[doc.ShoppingCartID] = doc
	return nil
}
