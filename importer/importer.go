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

package importer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	gojson "github.com/goccy/go-json"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
	"github.com/poiesic/casbert/storage"
	"golang.org/x/sync/errgroup"
)

// Bundle file names.
const (
	VariablesFile  = "variables.json"
	ComponentsFile = "components.json"
	CellmlsFile    = "cellmls.json"
	SedmlsFile     = "sedmls.json"
	WorkspacesFile = "workspaces.json"
	ImagesFile     = "images.json"
	UnitsFile      = "units.json"
	MathsFile      = "maths.json"
	ClustersFile   = "clusters.json"
)

// IndexFile returns the bundle file name of entity's index.
func IndexFile(entity core.EntityType) string {
	return "index_" + string(entity) + ".json"
}

// Importer writes catalog bundles into a repository.
type Importer struct {
	repo        storage.CatalogRepository
	concurrency int
	logger      *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		im.logger = logger
		return nil
	}
}

// WithConcurrency limits how many bundle files are decoded at once.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithConcurrency(n int) Option {
	return func(im *Importer) error {
		im.concurrency = max(n, 1)
		return nil
	}
}

// New creates an importer writing to repo.
func New(repo storage.CatalogRepository, opts ...Option) (*Importer, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	im := &Importer{
		repo:        repo,
		concurrency: max(runtime.NumCPU(), 1),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(im); err != nil {
			return nil, err
		}
	}
	im.logger = im.logger.With("component", "importer")
	return im, nil
}

// bundle holds the decoded files. A nil slice means the file was absent.
type bundle struct {
	variables  []core.Variable
	components []core.Component
	cellmls    []core.Cellml
	sedmls     []core.Sedml
	workspaces []core.Workspace
	images     []core.Image
	units      []core.Unit
	maths      []core.Math
	clusters   map[string][]string
	indexes    []*index.Index
}

// Import decodes every file of the bundle in dir and stores it. The
// returned counts are keyed by collection name ("variables", ...,
// "clusters", "index_<entity>") and only cover files that were present.
// Nothing is written unless every present file decodes.
func (im *Importer) Import(ctx context.Context, dir string) (map[string]int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotABundle, dir)
	}

	b, err := im.decode(ctx, dir)
	if err != nil {
		return nil, err
	}
	return im.store(ctx, b)
}

func (im *Importer) decode(ctx context.Context, dir string) (*bundle, error) {
	var b bundle
	indexes := make([]*index.Index, len(core.SearchableEntities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.concurrency)

	g.Go(func() (err error) {
		b.variables, err = decodeRecords(gctx, dir, VariablesFile, variableRecord.toCore)
		return err
	})
	g.Go(func() (err error) {
		b.components, err = decodeRecords(gctx, dir, ComponentsFile, componentRecord.toCore)
		return err
	})
	g.Go(func() (err error) {
		b.cellmls, err = decodeRecords(gctx, dir, CellmlsFile, cellmlRecord.toCore)
		return err
	})
	g.Go(func() (err error) {
		b.sedmls, err = decodeRecords(gctx, dir, SedmlsFile, sedmlRecord.toCore)
		return err
	})
	g.Go(func() (err error) {
		b.workspaces, err = decodeRecords(gctx, dir, WorkspacesFile, workspaceRecord.toCore)
		return err
	})
	g.Go(func() (err error) {
		b.images, err = decodeRecords(gctx, dir, ImagesFile, imageRecord.toCore)
		return err
	})
	g.Go(func() (err error) {
		b.units, err = decodeRecords(gctx, dir, UnitsFile, unitRecord.toCore)
		return err
	})
	g.Go(func() (err error) {
		b.maths, err = decodeRecords(gctx, dir, MathsFile, mathRecord.toCore)
		return err
	})
	g.Go(func() error {
		var rec clustersRecord
		found, err := decodeFile(gctx, dir, ClustersFile, &rec)
		if found && err == nil {
			b.clusters = rec.Cluster
			if b.clusters == nil {
				b.clusters = map[string][]string{}
			}
		}
		return err
	})
	for i, entity := range core.SearchableEntities {
		g.Go(func() error {
			var rec indexRecord
			found, err := decodeFile(gctx, dir, IndexFile(entity), &rec)
			if err != nil || !found {
				return err
			}
			ix, err := rec.toIndex(entity)
			if err != nil {
				return fmt.Errorf("%s: %w", IndexFile(entity), err)
			}
			indexes[i] = ix
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, ix := range indexes {
		if ix != nil {
			b.indexes = append(b.indexes, ix)
		}
	}
	return &b, nil
}

func (im *Importer) store(ctx context.Context, b *bundle) (map[string]int, error) {
	counts := make(map[string]int)
	steps := []struct {
		name    string
		present bool
		n       int
		put     func() error
	}{
		{"variables", b.variables != nil, len(b.variables), func() error { return im.repo.PutVariables(ctx, b.variables...) }},
		{"components", b.components != nil, len(b.components), func() error { return im.repo.PutComponents(ctx, b.components...) }},
		{"cellmls", b.cellmls != nil, len(b.cellmls), func() error { return im.repo.PutCellmls(ctx, b.cellmls...) }},
		{"sedmls", b.sedmls != nil, len(b.sedmls), func() error { return im.repo.PutSedmls(ctx, b.sedmls...) }},
		{"workspaces", b.workspaces != nil, len(b.workspaces), func() error { return im.repo.PutWorkspaces(ctx, b.workspaces...) }},
		{"images", b.images != nil, len(b.images), func() error { return im.repo.PutImages(ctx, b.images...) }},
		{"units", b.units != nil, len(b.units), func() error { return im.repo.PutUnits(ctx, b.units...) }},
		{"maths", b.maths != nil, len(b.maths), func() error { return im.repo.PutMaths(ctx, b.maths...) }},
		{"clusters", b.clusters != nil, len(b.clusters), func() error { return im.repo.PutClusters(ctx, b.clusters) }},
	}
	for _, step := range steps {
		if !step.present {
			continue
		}
		if err := step.put(); err != nil {
			return counts, err
		}
		counts[step.name] = step.n
		im.logger.Info("imported", "collection", step.name, "count", step.n)
	}

	for _, ix := range b.indexes {
		if err := im.repo.PutIndex(ctx, ix); err != nil {
			return counts, err
		}
		name := "index_" + string(ix.Entity())
		counts[name] = ix.Len()
		im.logger.Info("imported", "collection", name, "count", ix.Len(), "variants", ix.Variants())
	}
	return counts, nil
}

// decodeRecords decodes a JSON array file of R and converts each element.
// Absent files yield a nil slice; present but empty ones a non-nil one.
func decodeRecords[R any, T any](ctx context.Context, dir, name string, convert func(R) T) ([]T, error) {
	var records []R
	found, err := decodeFile(ctx, dir, name, &records)
	if err != nil || !found {
		return nil, err
	}
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = convert(r)
	}
	return out, nil
}

func decodeFile(ctx context.Context, dir, name string, v any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := gojson.NewDecoder(bufio.NewReader(f)).DecodeContext(ctx, v); err != nil {
		return true, fmt.Errorf("%w: %s: %w", storage.ErrSerializationFailed, name, err)
	}
	return true, nil
}
