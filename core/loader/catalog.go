package loader

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds one service instance. It takes no arguments; anything it
// needs is captured when the factory is registered.
type Factory func() (any, error)

// Catalog maps class references to factories. It replaces reflective lookup
// by name: a reference resolves only if something registered it.
type Catalog struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under ref. Registering the same reference twice is
// an error.
func (c *Catalog) Register(ref string, factory Factory) error {
	if ref == "" {
		return fmt.Errorf("service reference cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory for %s cannot be nil", ref)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.factories[ref]; exists {
		return fmt.Errorf("service reference %s already registered", ref)
	}

	c.factories[ref] = factory
	return nil
}

// Lookup returns the factory registered under ref.
func (c *Catalog) Lookup(ref string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	factory, ok := c.factories[ref]
	return factory, ok
}

// References returns every registered reference, sorted.
func (c *Catalog) References() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	refs := make([]string, 0, len(c.factories))
	for ref := range c.factories {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}

var defaultCatalog = NewCatalog()

// Default returns the process-wide catalog.
func Default() *Catalog {
	return defaultCatalog
}

// Register adds a factory to the process-wide catalog. It is meant for init
// functions and panics on a duplicate or empty reference.
func Register(ref string, factory Factory) {
	if err := defaultCatalog.Register(ref, factory); err != nil {
		panic(err)
	}
}
