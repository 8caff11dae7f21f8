package importer

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/storage"
	"github.com/poiesic/casbert/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundle(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newTestImporter(t *testing.T) (*Importer, *badger.CatalogRepository) {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	im, err := New(repo, WithConcurrency(2))
	require.NoError(t, err)
	return im, repo
}

var fullBundle = map[string]string{
	VariablesFile: `[
		{"id": "v1", "name": "V", "type": "state", "init": -84, "rate": 0.1, "unit": "u1",
		 "math": ["x1"], "dependent": [{"id": "v2", "name": "i_Na"}], "plot": ["s1.p1"],
		 "component": "c1", "leaves": ["http://identifiers.org/GO:0005886"]},
		{"id": "v2", "name": "i_Na", "type": "algebraic", "init": null, "rate": null, "component": "c1"}
	]`,
	ComponentsFile: `[{"id": "c1", "name": "membrane", "cellml": "m1", "variables": ["v1", "v2"]}]`,
	CellmlsFile: `[
		{"id": "m1", "url": "exposure/hh/hh.cellml", "title": "Hodgkin Huxley", "workspace": "workspace/hh",
		 "working_dir": "hh", "cellml": "hh.cellml", "images": ["i1"], "sedml": ["s1"]},
		{"id": "m2", "url": "exposure/noble/n.cellml", "article_ref": "Noble 1962"}
	]`,
	SedmlsFile: `[{"id": "s1", "url": "workspace/hh/sim.sedml", "workspace": "workspace/hh", "cellml": "m1",
		"variables": {"v1": -84, "v2": null},
		"outputs": [{"id": "p1", "series": [{"x": "v1", "y": "v2"}]}]}]`,
	WorkspacesFile: `[{"url": "workspace/hh", "exposures": ["e/hh"]}]`,
	ImagesFile:     `[{"id": "i1", "path": "figs/hh.png", "title": "HH", "cellml": "m1"}]`,
	UnitsFile:      `[{"id": "u1", "name": ["millivolt", "mV"], "text": "mV"}]`,
	MathsFile:      `[{"id": "x1", "source": "<math><apply/></math>"}]`,
	ClustersFile:   `{"cluster": {"3": ["m1", "m2", "unknown"]}}`,
	"index_variable.json": `{
		"ids": ["v1", "v2"],
		"classes": [{"GO:0005886": "plasma membrane"}, {}],
		"vectors": {"class": [[1, 0], [0, 1]], "class_predicate": [[1, 1], [1, -1]]},
		"texts": {"class_predicate": ["membrane potential", "sodium current"]}
	}`,
	"index_cellml.json": `{"ids": ["m1", "m2"], "vectors": {"class": [[1, 0], [0, 1]]}}`,
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	im, repo := newTestImporter(t)

	counts, err := im.Import(ctx, writeBundle(t, fullBundle))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"variables":      2,
		"components":     1,
		"cellmls":        2,
		"sedmls":         1,
		"workspaces":     1,
		"images":         1,
		"units":          1,
		"maths":          1,
		"clusters":       1,
		"index_variable": 2,
		"index_cellml":   2,
	}, counts)

	snap, err := repo.LoadSnapshot(ctx)
	require.NoError(t, err)

	v1, ok := snap.Variables().Get("v1")
	require.True(t, ok)
	assert.Equal(t, -84.0, v1.Init)
	assert.Equal(t, []core.DependentRef{{ID: "v2", Name: "i_Na"}}, v1.Dependent)
	assert.Equal(t, []string{"s1.p1"}, v1.Plots)

	v2, ok := snap.Variables().Get("v2")
	require.True(t, ok)
	assert.True(t, math.IsNaN(v2.Init), "null init decodes as unknown")
	assert.True(t, math.IsNaN(v2.Rate))

	m1, ok := snap.Cellmls().Get("m1")
	require.True(t, ok)
	assert.Equal(t, "hh/hh.cellml", m1.Path())
	m2, ok := snap.Cellmls().Get("m2")
	require.True(t, ok)
	assert.Equal(t, "Noble 1962", m2.DisplayTitle())

	s1, ok := snap.Sedmls().Get("s1")
	require.True(t, ok)
	out, ok := s1.Output("p1")
	require.True(t, ok)
	assert.Equal(t, []core.Series{{X: "v1", Y: "v2"}}, out.Series)
	assert.True(t, math.IsNaN(s1.Variables["v2"]))

	u1, ok := snap.Units().Get("u1")
	require.True(t, ok)
	assert.Equal(t, []string{"millivolt", "mV"}, u1.Names)

	assert.Equal(t, []string{"m2"}, snap.Clusters().Similar("m1"), "unknown member pruned")

	ix, ok := snap.Index(core.EntityVariable)
	require.True(t, ok)
	assert.Equal(t, []core.Variant{core.VariantClass, core.VariantClassPredicate}, ix.Variants())
	assert.Equal(t, core.ClassSet{"GO:0005886": {ID: "GO:0005886", Name: "plasma membrane"}}, ix.Classes("v1"))
	assert.Equal(t, []string{"membrane potential", "sodium current"}, ix.Texts(core.VariantClassPredicate))

	_, ok = snap.Index(core.EntityImage)
	assert.False(t, ok)
}

func TestImporter_PartialBundle(t *testing.T) {
	ctx := context.Background()
	im, repo := newTestImporter(t)

	counts, err := im.Import(ctx, writeBundle(t, map[string]string{
		UnitsFile: `[{"id": "u1", "text": "mV"}]`,
		MathsFile: `[]`,
	}))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"units": 1, "maths": 0}, counts)

	stored, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stored["units"])
	assert.Equal(t, 0, stored["variables"])
}

func TestImporter_Errors(t *testing.T) {
	ctx := context.Background()
	im, repo := newTestImporter(t)

	t.Run("malformed file writes nothing", func(t *testing.T) {
		_, err := im.Import(ctx, writeBundle(t, map[string]string{
			UnitsFile:     `[{"id": "u1", "text": "mV"}]`,
			VariablesFile: `[{"id": "v1", "init": "fast"}]`,
		}))
		assert.ErrorIs(t, err, storage.ErrSerializationFailed)

		stored, err := repo.Counts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stored["units"])
	})

	t.Run("inconsistent index", func(t *testing.T) {
		_, err := im.Import(ctx, writeBundle(t, map[string]string{
			"index_image.json": `{"ids": ["i1", "i2"], "vectors": {"class": [[1, 0]]}}`,
		}))
		assert.Error(t, err)
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := im.Import(ctx, writeBundle(t, map[string]string{
			"index_image.json": `{"ids": ["i1"], "vectors": {"predicate": [[1, 0]]}}`,
		}))
		assert.ErrorIs(t, err, core.ErrUnknownVariant)
	})

	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "bundle.json")
		require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))
		_, err := im.Import(ctx, file)
		assert.ErrorIs(t, err, ErrNotABundle)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := im.Import(ctx, filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, ErrRepositoryRequired)
	})
}
