package storage

import (
	"context"

	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
)

// CatalogRepository persists the catalog and materializes it as a Snapshot.
// Implementations must be thread-safe and support concurrent access.
type CatalogRepository interface {
	// PutVariables stores variable records, replacing records with the same id.
	PutVariables(ctx context.Context, records ...core.Variable) error
	// PutComponents stores component records.
	PutComponents(ctx context.Context, records ...core.Component) error
	// PutCellmls stores model records.
	PutCellmls(ctx context.Context, records ...core.Cellml) error
	// PutSedmls stores simulation experiment records.
	PutSedmls(ctx context.Context, records ...core.Sedml) error
	// PutWorkspaces stores workspace records keyed by URL.
	PutWorkspaces(ctx context.Context, records ...core.Workspace) error
	// PutImages stores image records.
	PutImages(ctx context.Context, records ...core.Image) error
	// PutUnits stores unit records.
	PutUnits(ctx context.Context, records ...core.Unit) error
	// PutMaths stores math fragments.
	PutMaths(ctx context.Context, records ...core.Math) error

	// PutIndex stores the embedding index of its entity type, replacing any
	// previous index of that type.
	PutIndex(ctx context.Context, ix *index.Index) error

	// GetIndex loads the embedding index of entity.
	// Returns ErrNotFound if none is stored.
	GetIndex(ctx context.Context, entity core.EntityType) (*index.Index, error)

	// PutClusters replaces the cluster membership table.
	PutClusters(ctx context.Context, members map[string][]string) error

	// LoadSnapshot reads everything stored into an immutable Snapshot.
	LoadSnapshot(ctx context.Context, opts ...SnapshotOption) (*Snapshot, error)

	// Counts returns the number of stored records per collection.
	Counts(ctx context.Context) (map[string]int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
