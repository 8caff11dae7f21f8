// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/casbert/cluster"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
)

// Catalog is the raw material of a Snapshot.
type Catalog struct {
	Variables  []core.Variable
	Components []core.Component
	Cellmls    []core.Cellml
	Sedmls     []core.Sedml
	Workspaces []core.Workspace
	Images     []core.Image
	Units      []core.Unit
	Maths      []core.Math
	Indexes    []*index.Index
	Clusters   map[string][]string
}

// Snapshot is the read-only context every search runs against: the
// relational collections, one embedding index per searchable entity type and
// the cluster table. It is built once and never modified, so any number of
// goroutines may read it without locking.
type Snapshot struct {
	variables  *MapCollection[core.Variable]
	components *MapCollection[core.Component]
	cellmls    *CellmlCollection
	sedmls     *MapCollection[core.Sedml]
	workspaces *MapCollection[core.Workspace]
	images     *MapCollection[core.Image]
	units      *MapCollection[core.Unit]
	maths      *MapCollection[core.Math]
	indexes    map[core.EntityType]*index.Index
	clusters   *cluster.Table
}

// SnapshotOption configures snapshot construction.
type SnapshotOption func(*snapshotOptions)

type snapshotOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report inconsistencies found while
// building the snapshot.
func WithLogger(logger *slog.Logger) SnapshotOption {
	return func(o *snapshotOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewSnapshot builds a Snapshot from c. Cluster members that are not in the
// Cellml collection are dropped. Index ids without a relational record are
// kept and reported; searches skip them.
func NewSnapshot(c Catalog, opts ...SnapshotOption) (*Snapshot, error) {
	o := snapshotOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("component", "snapshot")

	s := &Snapshot{
		variables:  NewMapCollection(c.Variables, func(v *core.Variable) string { return v.ID }),
		components: NewMapCollection(c.Components, func(v *core.Component) string { return v.ID }),
		cellmls:    NewCellmlCollection(c.Cellmls),
		sedmls:     NewMapCollection(c.Sedmls, func(v *core.Sedml) string { return v.ID }),
		workspaces: NewMapCollection(c.Workspaces, func(v *core.Workspace) string { return v.URL }),
		images:     NewMapCollection(c.Images, func(v *core.Image) string { return v.ID }),
		units:      NewMapCollection(c.Units, func(v *core.Unit) string { return v.ID }),
		maths:      NewMapCollection(c.Maths, func(v *core.Math) string { return v.ID }),
		indexes:    make(map[core.EntityType]*index.Index, len(c.Indexes)),
	}

	for _, ix := range c.Indexes {
		if _, dup := s.indexes[ix.Entity()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIndex, ix.Entity())
		}
		s.indexes[ix.Entity()] = ix
		if stale := s.StaleIDs(ix.Entity()); len(stale) > 0 {
			logger.Warn("index references missing records", "entity", ix.Entity(), "count", len(stale))
		}
	}

	table, removed := cluster.New(c.Clusters).Prune(func(model string) bool {
		_, ok := s.cellmls.Get(model)
		return ok
	})
	if len(removed) > 0 {
		logger.Warn("dropped unknown models from cluster table", "count", len(removed))
	}
	s.clusters = table

	logger.Debug("snapshot ready", "counts", s.Counts())
	return s, nil
}

func (s *Snapshot) Variables() Collection[core.Variable]   { return s.variables }
func (s *Snapshot) Components() Collection[core.Component] { return s.components }
func (s *Snapshot) Cellmls() *CellmlCollection             { return s.cellmls }
func (s *Snapshot) Sedmls() Collection[core.Sedml]         { return s.sedmls }
func (s *Snapshot) Workspaces() Collection[core.Workspace] { return s.workspaces }
func (s *Snapshot) Images() Collection[core.Image]         { return s.images }
func (s *Snapshot) Units() Collection[core.Unit]           { return s.units }
func (s *Snapshot) Maths() Collection[core.Math]           { return s.maths }
func (s *Snapshot) Clusters() *cluster.Table               { return s.clusters }

// Index returns the embedding index of entity.
func (s *Snapshot) Index(entity core.EntityType) (*index.Index, bool) {
	ix, ok := s.indexes[entity]
	return ix, ok
}

// Has reports whether the collection backing entity holds id.
func (s *Snapshot) Has(entity core.EntityType, id string) bool {
	var ok bool
	switch entity {
	case core.EntityVariable:
		_, ok = s.variables.Get(id)
	case core.EntityComponent:
		_, ok = s.components.Get(id)
	case core.EntityCellml:
		_, ok = s.cellmls.Get(id)
	case core.EntitySedml:
		_, ok = s.sedmls.Get(id)
	case core.EntityImage:
		_, ok = s.images.Get(id)
	}
	return ok
}

// StaleIDs returns the ids of entity's index that have no relational record.
func (s *Snapshot) StaleIDs(entity core.EntityType) []string {
	ix, ok := s.indexes[entity]
	if !ok {
		return nil
	}
	var stale []string
	for _, id := range ix.IDs() {
		if !s.Has(entity, id) {
			stale = append(stale, id)
		}
	}
	return stale
}

// Counts returns the number of records per collection and of entries per index.
func (s *Snapshot) Counts() map[string]int {
	counts := map[string]int{
		"variables":  s.variables.Len(),
		"components": s.components.Len(),
		"cellmls":    s.cellmls.Len(),
		"sedmls":     s.sedmls.Len(),
		"workspaces": s.workspaces.Len(),
		"images":     s.images.Len(),
		"units":      s.units.Len(),
		"maths":      s.maths.Len(),
		"clusters":   s.clusters.Len(),
	}
	for entity, ix := range s.indexes {
		counts["index_"+string(entity)] = ix.Len()
	}
	return counts
}
