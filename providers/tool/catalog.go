package tool

import (
	"slices"
	"strings"
	"sync"
)

// Catalog is a thread-safe set of tools keyed by case-insensitive name.
type Catalog struct {
	mu    sync.RWMutex
	tools map[string]*ToolDef
}

// NewCatalog creates a catalog pre-populated with defs.
func NewCatalog(defs ...*ToolDef) *Catalog {
	c := &Catalog{tools: make(map[string]*ToolDef)}
	c.Add(defs...)
	return c
}

// Add registers defs, replacing any tool with the same name. Nil entries
// are ignored.
func (c *Catalog) Add(defs ...*ToolDef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range defs {
		if d == nil {
			continue
		}
		c.tools[strings.ToLower(d.Name)] = d
	}
}

// Get retrieves a tool by name (case-insensitive).
func (c *Catalog) Get(name string) (*ToolDef, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.tools[strings.ToLower(name)]
	return d, ok
}

// Has checks if a tool with the given name exists (case-insensitive).
func (c *Catalog) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Remove deletes a tool and reports whether it was present.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := c.tools[key]; !ok {
		return false
	}
	delete(c.tools, key)
	return true
}

// Tools returns the tools sorted by name. Vendors receive them in this
// order, which keeps request bodies deterministic.
func (c *Catalog) Tools() []*ToolDef {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*ToolDef, 0, len(c.tools))
	for _, d := range c.tools {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b *ToolDef) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Names returns the sorted tool names.
func (c *Catalog) Names() []string {
	tools := c.Tools()
	names := make([]string, len(tools))
	for i, d := range tools {
		names[i] = d.Name
	}
	return names
}

// Size returns the number of tools in the catalog. A nil catalog is empty.
func (c *Catalog) Size() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tools)
}

// Merge adds all tools from other, replacing same-named ones.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil || other == c {
		return
	}
	c.Add(other.Tools()...)
}

// Clone returns an independent copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	return NewCatalog(c.Tools()...)
}

// Filter returns a new catalog holding only the named tools. Unknown names
// are skipped; they are reported by the second return value.
func (c *Catalog) Filter(names []string) (*Catalog, []string) {
	out := NewCatalog()
	var missing []string
	for _, name := range names {
		d, ok := c.Get(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		out.Add(d)
	}
	return out, missing
}
