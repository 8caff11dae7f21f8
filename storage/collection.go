package storage

import (
	"slices"

	"github.com/poiesic/casbert/core"
)

// Collection is a read-only keyed set of records.
// Returned records are shared and must not be modified.
type Collection[T any] interface {
	Get(id string) (*T, bool)
	Len() int
	IDs() []string
}

// MapCollection is a map-backed Collection built once.
type MapCollection[T any] struct {
	items map[string]*T
	ids   []string
}

var _ Collection[core.Variable] = (*MapCollection[core.Variable])(nil)

// NewMapCollection indexes items by key. Later duplicates replace earlier
// ones; IDs keeps first-seen order.
func NewMapCollection[T any](items []T, key func(*T) string) *MapCollection[T] {
	c := &MapCollection[T]{
		items: make(map[string]*T, len(items)),
		ids:   make([]string, 0, len(items)),
	}
	for i := range items {
		item := &items[i]
		id := key(item)
		if _, seen := c.items[id]; !seen {
			c.ids = append(c.ids, id)
		}
		c.items[id] = item
	}
	return c
}

// Get returns the record for id.
func (c *MapCollection[T]) Get(id string) (*T, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Len returns the number of records.
func (c *MapCollection[T]) Len() int { return len(c.items) }

// IDs returns the record ids in load order.
func (c *MapCollection[T]) IDs() []string { return slices.Clone(c.ids) }

// All returns the records in load order.
func (c *MapCollection[T]) All() []*T {
	out := make([]*T, len(c.ids))
	for i, id := range c.ids {
		out[i] = c.items[id]
	}
	return out
}

// CellmlCollection adds a reverse URL lookup to the Cellml records.
type CellmlCollection struct {
	*MapCollection[core.Cellml]
	byURL map[string]string
}

// NewCellmlCollection builds the collection and its URL map.
func NewCellmlCollection(items []core.Cellml) *CellmlCollection {
	c := &CellmlCollection{
		MapCollection: NewMapCollection(items, func(m *core.Cellml) string { return m.ID }),
		byURL:         make(map[string]string, len(items)),
	}
	for _, m := range c.All() {
		if m.URL != "" {
			c.byURL[m.URL] = m.ID
		}
	}
	return c
}

// ByURL returns the model stored at url.
func (c *CellmlCollection) ByURL(url string) (*core.Cellml, bool) {
	id, ok := c.byURL[url]
	if !ok {
		return nil, false
	}
	return c.Get(id)
}
