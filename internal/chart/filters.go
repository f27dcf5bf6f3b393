package chart

import (
	"sort"

	"github.com/dshills/chartflow/internal/store"
)

// HasFilter reports whether the named filter exists.
func (c *Context) HasFilter(name string) bool {
	_, ok := c.filters[name]
	return ok
}

// Filter returns the named filter cell, creating it empty on first use.
// Every change of a filter cell is projected into the Filters property.
func (c *Context) Filter(name string) *store.Cell[any] {
	if cell, ok := c.filters[name]; ok {
		return cell
	}

	cell := store.NewDeep[any]([]any{}, store.WithLogger(c.cfg.logger))
	c.filters[name] = cell
	c.Set(Filters, c.filterValues())

	c.filterUnsubs[name] = cell.OnChange(func(any, any) {
		c.Set(Filters, c.filterValues())
	})
	return cell
}

// RemoveFilter drops the named filter and updates the Filters property.
func (c *Context) RemoveFilter(name string) {
	if unsub, ok := c.filterUnsubs[name]; ok {
		unsub()
		delete(c.filterUnsubs, name)
	}
	if cell, ok := c.filters[name]; ok {
		cell.Destroy()
		delete(c.filters, name)
	}
	c.Set(Filters, c.filterValues())
}

// FilterNames returns the filter names sorted alphabetically.
func (c *Context) FilterNames() []string {
	out := make([]string, 0, len(c.filters))
	for name := range c.filters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// restoreFilters makes the filter cells match a Filters snapshot: filters
// missing from it are removed, the others are created or set.
func (c *Context) restoreFilters(snapshot any) {
	saved, _ := snapshot.(map[string]any)
	for _, name := range c.FilterNames() {
		if _, ok := saved[name]; !ok {
			c.RemoveFilter(name)
		}
	}
	names := make([]string, 0, len(saved))
	for name := range saved {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.Filter(name).Set(saved[name])
	}
}

func (c *Context) filterValues() map[string]any {
	out := make(map[string]any, len(c.filters))
	for name, cell := range c.filters {
		out[name] = plain(cell.Value())
	}
	return out
}
