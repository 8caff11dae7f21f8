// Package cluster holds the precomputed partition of Cellml models into
// similarity clusters.
package cluster

import (
	"maps"
	"slices"

	"github.com/poiesic/casbert/core"
)

// Table maps models to clusters and clusters to their ordered members.
// A Table is immutable and safe for concurrent use.
type Table struct {
	members map[string][]string
	byModel map[string]string
}

// New builds a Table from cluster id to member model ids. Member order is
// preserved. A model listed in several clusters belongs to the last one
// in cluster id order.
func New(members map[string][]string) *Table {
	t := &Table{
		members: make(map[string][]string, len(members)),
		byModel: make(map[string]string),
	}
	for _, id := range slices.Sorted(maps.Keys(members)) {
		list := slices.Clone(members[id])
		t.members[id] = list
		for _, model := range list {
			t.byModel[model] = id
		}
	}
	return t
}

// Len returns the number of clusters.
func (t *Table) Len() int { return len(t.members) }

// Clusters returns the cluster ids in sorted order.
func (t *Table) Clusters() []string {
	return slices.Sorted(maps.Keys(t.members))
}

// ClusterOf returns the cluster of model.
func (t *Table) ClusterOf(model string) (string, bool) {
	id, ok := t.byModel[model]
	return id, ok
}

// Members returns the models of cluster in stored order.
func (t *Table) Members(cluster string) []string {
	return slices.Clone(t.members[cluster])
}

// Similar returns the other members of model's cluster in stored order.
// Unclustered and unknown models have no similar models.
func (t *Table) Similar(model string) []string {
	id, ok := t.byModel[model]
	if !ok || id == core.NoCluster {
		return []string{}
	}
	out := make([]string, 0, len(t.members[id]))
	for _, m := range t.members[id] {
		if m != model {
			out = append(out, m)
		}
	}
	return out
}

// Prune returns a table without the members for which exists is false,
// together with the removed model ids.
func (t *Table) Prune(exists func(model string) bool) (*Table, []string) {
	var removed []string
	kept := make(map[string][]string, len(t.members))
	for id, list := range t.members {
		out := make([]string, 0, len(list))
		for _, m := range list {
			if exists(m) {
				out = append(out, m)
			} else {
				removed = append(removed, m)
			}
		}
		kept[id] = out
	}
	slices.Sort(removed)
	return New(kept), removed
}

// Data returns a copy of the cluster membership for persisting.
func (t *Table) Data() map[string][]string {
	out := make(map[string][]string, len(t.members))
	for id, list := range t.members {
		out[id] = slices.Clone(list)
	}
	return out
}
