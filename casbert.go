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

// Package casbert ties the catalog store, the query encoder and the entity
// resolver together.
package casbert

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/casbert/ai"
	"github.com/poiesic/casbert/ai/openai"
	"github.com/poiesic/casbert/assets"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/importer"
	"github.com/poiesic/casbert/mathml"
	"github.com/poiesic/casbert/reindex"
	"github.com/poiesic/casbert/search"
	"github.com/poiesic/casbert/storage"
	"github.com/poiesic/casbert/storage/badger"
)

type Database struct {
	repo       storage.CatalogRepository
	provider   ai.AIProvider
	transcoder mathml.Transcoder
	assets     assets.Store
	logger     *slog.Logger

	mu       sync.Mutex
	snapshot *storage.Snapshot
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	provider   ai.AIProvider
	transcoder mathml.Transcoder
	assets     assets.Store
	logger     *slog.Logger
	readOnly   bool
}

// WithAIConfig sets the embedder configuration used to build the provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The database closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithTranscoder sets the math transcoder. Default is mathml.Passthrough.
func WithTranscoder(transcoder mathml.Transcoder) DatabaseOption {
	return func(o *databaseOptions) {
		o.transcoder = transcoder
	}
}

// WithAssetStore sets where model images are looked up. By default no image
// is ever found.
func WithAssetStore(store assets.Store) DatabaseOption {
	return func(o *databaseOptions) {
		o.assets = store
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithReadOnly opens an existing database without write access.
func WithReadOnly() DatabaseOption {
	return func(o *databaseOptions) {
		o.readOnly = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:   ai.DefaultConfig(),
		transcoder: mathml.Passthrough{},
		assets:     assets.None{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	open := badger.NewRepository
	if options.readOnly {
		open = badger.NewReadOnlyRepository
	}
	repo, err := open(filePath, badger.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig, openai.WithLogger(options.logger))
		if err != nil {
			repo.Close()
			return nil, err
		}
	}

	return &Database{
		repo:       repo,
		provider:   provider,
		transcoder: options.transcoder,
		assets:     options.assets,
		logger:     options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if err := db.repo.Close(); err != nil {
		db.logger.Error("error closing catalog repository", "err", err)
		return err
	}
	return nil
}

func (db *Database) Repository() storage.CatalogRepository {
	return db.repo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// Snapshot returns the loaded catalog, reading it from the store on first
// use. Every searcher created before the next Import shares it.
func (db *Database) Snapshot(ctx context.Context) (*storage.Snapshot, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.snapshot != nil {
		return db.snapshot, nil
	}
	snap, err := db.repo.LoadSnapshot(ctx, storage.WithLogger(db.logger))
	if err != nil {
		return nil, err
	}
	db.snapshot = snap
	return snap, nil
}

func (db *Database) invalidate() {
	db.mu.Lock()
	db.snapshot = nil
	db.mu.Unlock()
}

func (db *Database) NewSearcher(ctx context.Context, opts ...search.Option) (*search.Searcher, error) {
	snap, err := db.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]search.Option{search.WithLogger(db.logger)}, opts...)
	return search.NewSearcher(snap, db.provider, db.transcoder, db.assets, opts...)
}

// Import stores the bundle in dir. Searchers created afterwards see it.
func (db *Database) Import(ctx context.Context, dir string, opts ...importer.Option) (map[string]int, error) {
	opts = append([]importer.Option{importer.WithLogger(db.logger)}, opts...)
	im, err := importer.New(db.repo, opts...)
	if err != nil {
		return nil, err
	}
	defer db.invalidate()
	return im.Import(ctx, dir)
}

// Reindex re-embeds the variant vectors of entity's index with the
// database's embedder. Searchers created afterwards see the new vectors.
func (db *Database) Reindex(ctx context.Context, entity core.EntityType, variant core.Variant, config *reindex.Config, progress io.Writer) (int, error) {
	r, err := reindex.NewRebuilder(db.repo, db.provider.Embedder(), config, progress, reindex.WithLogger(db.logger))
	if err != nil {
		return 0, err
	}
	defer db.invalidate()
	return r.Run(ctx, entity, variant)
}
