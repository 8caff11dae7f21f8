package reindex

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/casbert/ai/mock"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
	"github.com/poiesic/casbert/storage"
	"github.com/poiesic/casbert/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) *badger.CatalogRepository {
	t.Helper()
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ix, err := index.New(index.Data{
		Entity: core.EntityVariable,
		IDs:    []string{"v1", "v2", "v3", "v4", "v5"},
		Classes: []core.ClassSet{
			{"OPB:00506": {ID: "OPB:00506", Name: "electrical potential"}, "GO:0005886": {ID: "GO:0005886", Name: "plasma membrane"}},
			{"CHEBI:29101": {ID: "CHEBI:29101", Name: "sodium"}},
			{},
			{"OPB:00340": {ID: "OPB:00340", Name: "concentration"}},
			{},
		},
		Vectors: map[core.Variant][][]float32{
			core.VariantClassPredicate: {{1, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 1}},
		},
		Texts: map[core.Variant][]string{
			core.VariantClassPredicate: {"membrane potential", "sodium current", "time constant", "calcium", "gate"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, repo.PutIndex(context.Background(), ix))
	return repo
}

func testConfig() *Config {
	return &Config{BatchSize: 2, ReportInterval: 2, MaxRetries: 2, RetryDelay: time.Millisecond}
}

func TestRebuilder_Run(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	embedder := mock.NewMockEmbedder()

	var buf bytes.Buffer
	r, err := NewRebuilder(repo, embedder, testConfig(), &buf)
	require.NoError(t, err)

	n, err := r.Run(ctx, core.EntityVariable, core.VariantClassPredicate)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 3, embedder.CallCount(), "five texts in batches of two")

	ix, err := repo.GetIndex(ctx, core.EntityVariable)
	require.NoError(t, err)
	assert.Equal(t, mock.DefaultDimension, ix.Dimension(core.VariantClassPredicate))
	assert.Equal(t, []string{"membrane potential", "sodium current", "time constant", "calcium", "gate"}, ix.Texts(core.VariantClassPredicate))

	matches, err := ix.Search(ctx, embedder, "sodium current", 1, 0.99, core.VariantClassPredicate)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "v2", matches[0].ID)

	assert.Contains(t, buf.String(), "variable: 5/5")
	assert.Contains(t, buf.String(), "Rebuild complete")
}

func TestRebuilder_ClassVariantFromAnnotations(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	var seen []string
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		seen = append(seen, texts...)
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.DeterministicVector(text, 8)
		}
		return out, nil
	})

	r, err := NewRebuilder(repo, embedder, testConfig(), nil)
	require.NoError(t, err)
	_, err = r.Run(ctx, core.EntityVariable, core.VariantClass)
	require.NoError(t, err)

	assert.Equal(t, []string{"plasma membrane electrical potential", "sodium", "", "concentration", ""}, seen)

	ix, err := repo.GetIndex(ctx, core.EntityVariable)
	require.NoError(t, err)
	assert.ElementsMatch(t, []core.Variant{core.VariantClass, core.VariantClassPredicate}, ix.Variants())
	assert.Equal(t, 8, ix.Dimension(core.VariantClass))
	assert.Equal(t, 2, ix.Dimension(core.VariantClassPredicate), "other variant untouched")
}

func TestRebuilder_FailedBatchKeepsStoredIndex(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)

	calls := 0
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("service unavailable")
		}
		return make([][]float32, len(texts)), nil
	})

	r, err := NewRebuilder(repo, embedder, testConfig(), nil)
	require.NoError(t, err)
	_, err = r.Run(ctx, core.EntityVariable, core.VariantClassPredicate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service unavailable")
	assert.Equal(t, 3, calls, "one good batch, then two attempts")

	ix, err := repo.GetIndex(ctx, core.EntityVariable)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Dimension(core.VariantClassPredicate))
}

func TestRebuilder_Errors(t *testing.T) {
	ctx := context.Background()
	repo := setupRepo(t)
	r, err := NewRebuilder(repo, mock.NewMockEmbedder(), nil, nil)
	require.NoError(t, err)

	t.Run("missing index", func(t *testing.T) {
		_, err := r.Run(ctx, core.EntityImage, core.VariantClass)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("unknown entity", func(t *testing.T) {
		_, err := r.Run(ctx, core.EntityType("workspace"), core.VariantClass)
		assert.ErrorIs(t, err, core.ErrUnknownEntityType)
	})

	t.Run("unknown variant", func(t *testing.T) {
		_, err := r.Run(ctx, core.EntityVariable, core.Variant("predicate"))
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})

	t.Run("invalid retries", func(t *testing.T) {
		_, err := NewRebuilder(repo, mock.NewMockEmbedder(), &Config{BatchSize: 1}, nil)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})
}

func TestSourceTexts_NoTexts(t *testing.T) {
	ix, err := index.New(index.Data{Entity: core.EntityImage, IDs: []string{"i1"}})
	require.NoError(t, err)

	_, err = SourceTexts(ix, core.VariantClassPredicate)
	assert.ErrorIs(t, err, ErrNoSourceTexts)

	texts, err := SourceTexts(ix, core.VariantClass)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, texts)
}
