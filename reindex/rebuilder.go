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

package reindex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/casbert/ai"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/storage"
)

const (
	// DefaultBatchSize is the default number of texts per embedding call.
	DefaultBatchSize = 100
)

// Config holds configuration for a rebuild.
type Config struct {
	// BatchSize is the number of texts sent in each embedding call
	BatchSize int

	// ReportInterval is how often to report progress (number of entries)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: DefaultBatchSize,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Rebuilder re-embeds stored indexes.
type Rebuilder struct {
	repo     storage.CatalogRepository
	config   *Config
	progress io.Writer
	batcher  *BatchEmbedder
	logger   *slog.Logger
}

// Option configures a Rebuilder.
type Option func(*Rebuilder) error

// WithLogger sets the rebuilder logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Rebuilder) error {
		if logger != nil {
			r.logger = logger
		}
		return nil
	}
}

// NewRebuilder creates a rebuilder writing progress to progress
// (typically os.Stderr). A nil config selects DefaultConfig.
func NewRebuilder(repo storage.CatalogRepository, embedder ai.Embedder, config *Config, progress io.Writer, opts ...Option) (*Rebuilder, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if progress == nil {
		progress = io.Discard
	}

	r := &Rebuilder{
		repo:     repo,
		config:   config,
		progress: progress,
		batcher:  NewBatchEmbedder(embedder, config.MaxRetries, config.RetryDelay),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "rebuilder")
	return r, nil
}

// Run replaces the variant vectors of entity's index with fresh embeddings
// of its source texts and returns the number of entries embedded. The stored
// index is only replaced once every batch has succeeded.
func (r *Rebuilder) Run(ctx context.Context, entity core.EntityType, variant core.Variant) (int, error) {
	if _, err := core.ParseEntityType(string(entity)); err != nil {
		return 0, err
	}
	ix, err := r.repo.GetIndex(ctx, entity)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s index: %w", entity, err)
	}
	texts, err := SourceTexts(ix, variant)
	if err != nil {
		return 0, err
	}

	total := len(texts)
	if total == 0 {
		fmt.Fprintf(r.progress, "No entries found in %s index\n", entity)
		return 0, nil
	}
	fmt.Fprintf(r.progress, "Rebuilding %s/%s vectors for %d entries (batch size: %d)\n",
		entity, variant, total, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, string(entity), total, r.config.ReportInterval)
	tracker.Start()

	vectors := make([][]float32, 0, total)
	for _, batch := range Batches(texts, r.config.BatchSize) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		embedded, err := r.batcher.Embed(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("failed to process batch: %w", err)
		}
		vectors = append(vectors, embedded...)
		tracker.Add(len(batch))
	}
	tracker.Finish()

	updated, err := ix.WithVectors(variant, vectors)
	if err != nil {
		return 0, err
	}
	if err := r.repo.PutIndex(ctx, updated); err != nil {
		return 0, err
	}

	elapsed := tracker.Elapsed()
	r.logger.Info("index rebuilt", "entity", entity, "variant", variant, "entries", total, "dimension", updated.Dimension(variant), "elapsed", elapsed)
	fmt.Fprintf(r.progress, "Rebuild complete. Embedded %d entries in %v (%.1f entries/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())
	return total, nil
}
