package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPlots(t *testing.T) {
	s := newTestSearcher(t, allAssets)
	ctx := context.Background()

	t.Run("capped at top", func(t *testing.T) {
		q := query("sodium current")
		q.Top = 1
		res, err := s.SearchPlots(ctx, q)
		require.NoError(t, err)
		require.Len(t, res.Results, 1)

		p := res.Results[0]
		assert.Equal(t, "s1.p1", p.ID)
		assert.Equal(t, "s1.p1.png", p.Image)
		assert.Equal(t, "workspace/hh/sim.sedml", p.URL)
		assert.Equal(t, "exposure/hh/hh.cellml", p.CellmlURL)
		assert.Equal(t, "workspace/hh", p.WorkspaceURL)
		assert.Equal(t, []string{"e/hh1", "e/hh2"}, p.Exposures)

		require.Len(t, p.Variables, 3)
		assert.Equal(t, "v1", p.Variables[0].ID)
		assert.Equal(t, "V", p.Variables[0].Name)
		assert.Equal(t, "mV", p.Variables[0].Unit.Text)
		assert.Contains(t, p.Variables[0].Classes, "GO:0005886")
		assert.Equal(t, "v2", p.Variables[1].ID)
		assert.Equal(t, "v3", p.Variables[2].ID)
	})

	t.Run("distinct plots in rank order", func(t *testing.T) {
		q := query("sodium current")
		q.MinSimilarity = -1
		res, err := s.SearchPlots(ctx, q)
		require.NoError(t, err)
		require.Len(t, res.Results, 2)
		assert.Equal(t, "s1.p1", res.Results[0].ID)
		assert.Equal(t, "s1.p2", res.Results[1].ID)
		assert.Equal(t, 1, res.Stale)
	})

	t.Run("facets from plotted variables", func(t *testing.T) {
		q := query("sodium current")
		q.MinSimilarity = -1
		res, err := s.SearchPlots(ctx, q)
		require.NoError(t, err)
		require.Contains(t, res.Filter, "CHEBI:29101")
		assert.Equal(t, []string{"s1.p1", "s1.p2"}, res.Filter["CHEBI:29101"].Entities)
		assert.Equal(t, []string{"s1.p1"}, res.Filter["GO:0005886"].Entities)
	})

	t.Run("variable without plots", func(t *testing.T) {
		res, err := s.SearchPlots(ctx, query("time constant"))
		require.NoError(t, err)
		assert.Empty(t, res.Results)
		assert.Empty(t, res.Filter)
	})

	t.Run("zero top", func(t *testing.T) {
		q := query("sodium current")
		q.Top = 0
		res, err := s.SearchPlots(ctx, q)
		require.NoError(t, err)
		assert.Empty(t, res.Results)
	})
}

func TestPlotResult_MissingReferences(t *testing.T) {
	s := newTestSearcher(t, allAssets)

	_, ok := s.plotResult("s1.p9")
	assert.False(t, ok)
	_, ok = s.plotResult("s9.p1")
	assert.False(t, ok)
	_, ok = s.plotResult("malformed")
	assert.False(t, ok)
}
