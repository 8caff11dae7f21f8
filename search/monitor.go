package search

import (
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
)

// Monitor provides hooks to observe a search.
// SearchAll runs entity searches concurrently, so implementations must be
// safe for concurrent use.
type Monitor interface {
	Start(entity core.EntityType, query string)
	AfterIndexSearch(entity core.EntityType, matches []index.Match)
	StaleReference(entity core.EntityType, id string)
	Finish(entity core.EntityType, count int)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.EntityType, _ string)                   {}
func (n *noopMonitor) AfterIndexSearch(_ core.EntityType, _ []index.Match) {}
func (n *noopMonitor) StaleReference(_ core.EntityType, _ string)          {}
func (n *noopMonitor) Finish(_ core.EntityType, _ int)                     {}
