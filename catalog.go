package quarry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Catalog holds the registered statements of a Configuration. It only
// grows: a statement, once added, is never replaced or removed, so method
// plans built against it stay valid.
type Catalog struct {
	mu         sync.RWMutex
	statements map[string]*Statement
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{statements: make(map[string]*Statement)}
}

// Add registers statements. Either all of them are added or, if any ID is
// empty or already present, none are.
func (c *Catalog) Add(stmts ...*Statement) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(stmts))
	for _, s := range stmts {
		if s == nil || s.ID == "" {
			return fmt.Errorf("quarry: statement without id")
		}
		if _, exists := c.statements[s.ID]; exists || seen[s.ID] {
			return fmt.Errorf("quarry: %w: %s", ErrDuplicateStatement, s.ID)
		}
		seen[s.ID] = true
	}
	for _, s := range stmts {
		c.statements[s.ID] = s
	}
	return nil
}

// Lookup returns the statement registered under id.
func (c *Catalog) Lookup(id string) (*Statement, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.statements[id]
	return s, ok
}

// Has reports whether a statement is registered under id.
func (c *Catalog) Has(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// HasNamespace reports whether any statement belongs to namespace.
func (c *Catalog) HasNamespace(namespace string) bool {
	prefix := namespace + "."
	c.mu.RLock()
	defer c.mu.RUnlock()
	for id := range c.statements {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

// IDs returns every registered statement ID in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	ids := make([]string, 0, len(c.statements))
	for id := range c.statements {
		ids = append(ids, id)
	}
	c.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered statements.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.statements)
}
