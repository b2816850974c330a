package symbol

import (
	"context"
	"fmt"
	"sync"

	"github.com/hargabyte/cppgen/internal/oracle"
)

// Cache holds one symbol tree per document. Trees are built on first use and
// kept until invalidated; they are never updated in place.
type Cache struct {
	provider oracle.SymbolProvider

	mu    sync.Mutex
	trees map[string]*Tree
}

// NewCache creates a cache that fetches symbols from provider.
func NewCache(provider oracle.SymbolProvider) *Cache {
	return &Cache{
		provider: provider,
		trees:    make(map[string]*Tree),
	}
}

// Get returns the symbol tree for a document path, querying the provider if
// the tree is not cached.
func (c *Cache) Get(ctx context.Context, path string) (*Tree, error) {
	c.mu.Lock()
	t, ok := c.trees[path]
	c.mu.Unlock()
	if ok {
		return t, nil
	}

	symbols, err := c.provider.DocumentSymbols(ctx, oracle.URIFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("document symbols for %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t = Build(path, symbols)
	c.mu.Lock()
	c.trees[path] = t
	c.mu.Unlock()
	return t, nil
}

// Invalidate discards the tree for a document.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.trees, path)
	c.mu.Unlock()
}

// InvalidateAll discards every cached tree.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.trees = make(map[string]*Tree)
	c.mu.Unlock()
}

// Len returns the number of cached trees.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.trees)
}
