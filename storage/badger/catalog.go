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

package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
	"github.com/mus-format/mus-go"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
	"github.com/poiesic/casbert/storage"
	"golang.org/x/sync/errgroup"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
	ownsDB  bool
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *slog.Logger

	closeOnce sync.Once
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// RepositoryOption configures a CatalogRepository.
type RepositoryOption func(*CatalogRepository) error

// WithLogger sets the repository logger.
func WithLogger(logger *slog.Logger) RepositoryOption {
	return func(r *CatalogRepository) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// NewCatalogRepository creates a repository on an open backend. The caller
// keeps ownership of backend.
func NewCatalogRepository(backend *Backend, opts ...RepositoryOption) (*CatalogRepository, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, err
	}

	r := &CatalogRepository{
		backend: backend,
		encoder: encoder,
		decoder: decoder,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.release()
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "catalog-repository")
	return r, nil
}

// NewRepository opens (or creates) a database directory and returns a
// repository that owns it.
func NewRepository(path string, opts ...RepositoryOption) (storage.CatalogRepository, error) {
	repo, err := openRepository(path, false, nil, opts...)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// NewReadOnlyRepository opens an existing database for searching.
func NewReadOnlyRepository(path string, opts ...RepositoryOption) (storage.CatalogRepository, error) {
	repo, err := openRepository(path, false, []BackendOption{WithReadOnly()}, opts...)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func openRepository(path string, inMemory bool, bopts []BackendOption, opts ...RepositoryOption) (*CatalogRepository, error) {
	probe := &CatalogRepository{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(probe); err != nil {
			return nil, err
		}
	}
	bopts = append(bopts, WithBackendLogger(probe.logger))

	backend, err := OpenBackend(path, inMemory, bopts...)
	if err != nil {
		return nil, err
	}
	repo, err := NewCatalogRepository(backend, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	repo.ownsDB = true
	return repo, nil
}

// Close releases the compressors and, when the repository opened the
// database itself, the database.
func (r *CatalogRepository) Close() error {
	var err error
	r.closeOnce.Do(func() {
		r.release()
		if r.ownsDB {
			err = r.backend.Close()
		}
	})
	return err
}

func (r *CatalogRepository) release() {
	r.encoder.Close()
	r.decoder.Close()
}

func (r *CatalogRepository) checkOpen() error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

func putRecords[T any](r *CatalogRepository, prefix string, ser mus.Serializer[T], key func(*T) string, records []T) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	err := r.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for i := range records {
			if err := wb.Set(makeRecordKey(prefix, key(&records[i])), storage.Marshal(ser, records[i])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store %s records: %w", prefix, err)
	}
	r.logger.Debug("stored records", "prefix", prefix, "count", len(records))
	return nil
}

func loadRecords[T any](ctx context.Context, r *CatalogRepository, prefix string, ser mus.Serializer[T]) ([]T, error) {
	var out []T
	err := r.backend.Scan(ctx, makePrefix(prefix), func(key, val []byte) error {
		v, err := storage.Unmarshal(ser, val)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, v)
		return nil
	})
	return out, err
}

func (r *CatalogRepository) PutVariables(ctx context.Context, records ...core.Variable) error {
	return putRecords(r, variablePrefix, storage.VariableMUS, func(v *core.Variable) string { return v.ID }, records)
}

func (r *CatalogRepository) PutComponents(ctx context.Context, records ...core.Component) error {
	return putRecords(r, componentPrefix, storage.ComponentMUS, func(v *core.Component) string { return v.ID }, records)
}

func (r *CatalogRepository) PutCellmls(ctx context.Context, records ...core.Cellml) error {
	return putRecords(r, cellmlPrefix, storage.CellmlMUS, func(v *core.Cellml) string { return v.ID }, records)
}

func (r *CatalogRepository) PutSedmls(ctx context.Context, records ...core.Sedml) error {
	return putRecords(r, sedmlPrefix, storage.SedmlMUS, func(v *core.Sedml) string { return v.ID }, records)
}

func (r *CatalogRepository) PutWorkspaces(ctx context.Context, records ...core.Workspace) error {
	return putRecords(r, workspacePrefix, storage.WorkspaceMUS, func(v *core.Workspace) string { return v.URL }, records)
}

func (r *CatalogRepository) PutImages(ctx context.Context, records ...core.Image) error {
	return putRecords(r, imagePrefix, storage.ImageMUS, func(v *core.Image) string { return v.ID }, records)
}

func (r *CatalogRepository) PutUnits(ctx context.Context, records ...core.Unit) error {
	return putRecords(r, unitPrefix, storage.UnitMUS, func(v *core.Unit) string { return v.ID }, records)
}

func (r *CatalogRepository) PutMaths(ctx context.Context, records ...core.Math) error {
	return putRecords(r, mathPrefix, storage.MathMUS, func(v *core.Math) string { return v.ID }, records)
}

// PutIndex stores ix as a single mus-encoded, zstd-compressed blob.
func (r *CatalogRepository) PutIndex(ctx context.Context, ix *index.Index) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	raw := storage.Marshal(storage.IndexMUS, ix.Data())
	blob := r.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeIndexKey(ix.Entity()), blob); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return fmt.Errorf("failed to store %s index: %w", ix.Entity(), err)
	}
	r.logger.Debug("stored index", "entity", ix.Entity(), "entries", ix.Len(), "raw", len(raw), "compressed", len(blob))
	return nil
}

// GetIndex loads the index of entity.
func (r *CatalogRepository) GetIndex(ctx context.Context, entity core.EntityType) (*index.Index, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	var ix *index.Index
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexKey(entity))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s index", storage.ErrNotFound, entity)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			ix, err = r.decodeIndex(val)
			return err
		})
	}, false)
	return ix, err
}

func (r *CatalogRepository) decodeIndex(blob []byte) (*index.Index, error) {
	raw, err := r.decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	data, err := storage.Unmarshal(storage.IndexMUS, raw)
	if err != nil {
		return nil, err
	}
	return index.New(data)
}

func (r *CatalogRepository) loadIndexes(ctx context.Context) ([]*index.Index, error) {
	var out []*index.Index
	err := r.backend.Scan(ctx, makePrefix(indexPrefix), func(key, val []byte) error {
		ix, err := r.decodeIndex(val)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, ix)
		return nil
	})
	return out, err
}

// PutClusters replaces the cluster table.
func (r *CatalogRepository) PutClusters(ctx context.Context, members map[string][]string) error {
	if err := r.checkOpen(); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(clustersKey), storage.Marshal(storage.ClustersMUS, members)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

func (r *CatalogRepository) loadClusters() (map[string][]string, error) {
	var members map[string][]string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(clustersKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			members, err = storage.Unmarshal(storage.ClustersMUS, val)
			return err
		})
	}, false)
	return members, err
}

// LoadSnapshot reads every collection concurrently and builds a Snapshot.
func (r *CatalogRepository) LoadSnapshot(ctx context.Context, opts ...storage.SnapshotOption) (*storage.Snapshot, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	var c storage.Catalog
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		c.Variables, err = loadRecords(gctx, r, variablePrefix, storage.VariableMUS)
		return err
	})
	g.Go(func() (err error) {
		c.Components, err = loadRecords(gctx, r, componentPrefix, storage.ComponentMUS)
		return err
	})
	g.Go(func() (err error) {
		c.Cellmls, err = loadRecords(gctx, r, cellmlPrefix, storage.CellmlMUS)
		return err
	})
	g.Go(func() (err error) {
		c.Sedmls, err = loadRecords(gctx, r, sedmlPrefix, storage.SedmlMUS)
		return err
	})
	g.Go(func() (err error) {
		c.Workspaces, err = loadRecords(gctx, r, workspacePrefix, storage.WorkspaceMUS)
		return err
	})
	g.Go(func() (err error) {
		c.Images, err = loadRecords(gctx, r, imagePrefix, storage.ImageMUS)
		return err
	})
	g.Go(func() (err error) {
		c.Units, err = loadRecords(gctx, r, unitPrefix, storage.UnitMUS)
		return err
	})
	g.Go(func() (err error) {
		c.Maths, err = loadRecords(gctx, r, mathPrefix, storage.MathMUS)
		return err
	})
	g.Go(func() (err error) {
		c.Indexes, err = r.loadIndexes(gctx)
		return err
	})
	g.Go(func() (err error) {
		c.Clusters, err = r.loadClusters()
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	opts = append([]storage.SnapshotOption{storage.WithLogger(r.logger)}, opts...)
	return storage.NewSnapshot(c, opts...)
}

// Counts returns the number of stored keys per collection.
func (r *CatalogRepository) Counts(ctx context.Context) (map[string]int, error) {
	if err := r.checkOpen(); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(collectionPrefixes))
	for name, prefix := range collectionPrefixes {
		n, err := r.backend.Count(makePrefix(prefix))
		if err != nil {
			return nil, err
		}
		counts[name] = n
	}
	return counts, nil
}
