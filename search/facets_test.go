package search

import (
	"context"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/poiesic/casbert/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFacets(t *testing.T) {
	sources := []facetSource{
		{id: "v1", classes: []core.ClassSet{class("A", "alpha").Merge(class("B", "beta"))}},
		{id: "v2", classes: []core.ClassSet{class("B", "beta")}},
		{id: "p1", classes: []core.ClassSet{class("C", "gamma"), class("A", "alpha")}},
		{id: "v3"},
	}

	filter, postings := buildFacets(sources)
	require.Len(t, filter, 3)

	assert.Equal(t, &Facet{Name: "alpha", Classes: []string{"A", "B"}, Entities: []string{"v1", "p1"}}, filter["A"])
	assert.Equal(t, &Facet{Name: "beta", Classes: []string{"A", "B"}, Entities: []string{"v1", "v2"}}, filter["B"])
	assert.Equal(t, &Facet{Name: "gamma", Classes: []string{"C"}, Entities: []string{"p1"}}, filter["C"])
	assert.Equal(t, uint64(2), postings["A"].GetCardinality())
}

// Every class cited by a result is a key and its entities are exactly the
// results citing it.
func TestBuildFacets_Property(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 50; round++ {
		sources := make([]facetSource, rng.IntN(20))
		for i := range sources {
			sources[i].id = fmt.Sprintf("e%d", i)
			for range rng.IntN(3) {
				set := core.ClassSet{}
				for range rng.IntN(4) {
					id := fmt.Sprintf("K%d", rng.IntN(8))
					set[id] = core.Class{ID: id, Name: "n" + id}
				}
				sources[i].classes = append(sources[i].classes, set)
			}
		}

		filter, _ := buildFacets(sources)

		want := map[string][]string{}
		for _, src := range sources {
			cited := map[string]bool{}
			for _, set := range src.classes {
				for id := range set {
					cited[id] = true
				}
			}
			for _, id := range slices.Sorted(maps.Keys(cited)) {
				want[id] = append(want[id], src.id)
			}
		}

		require.Equal(t, len(want), len(filter))
		for id, entities := range want {
			require.Contains(t, filter, id)
			assert.Equal(t, entities, filter[id].Entities)
			assert.Contains(t, filter[id].Classes, id)
			assert.True(t, slices.IsSorted(filter[id].Classes))
		}
	}
}

func TestResult_Refine(t *testing.T) {
	s := newTestSearcher(t, allAssets)

	q := query("membrane potential")
	q.Top = 10
	q.MinSimilarity = -1
	res, err := s.SearchVariables(context.Background(), q)
	require.NoError(t, err)

	ids := func(rs []VariableResult) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	assert.ElementsMatch(t, []string{"v1", "v4"}, ids(res.Refine("OPB:00506")))
	assert.Equal(t, []string{"v1"}, ids(res.Refine("OPB:00506", "GO:0005886")))
	assert.Empty(t, res.Refine("OPB:00506", "CHEBI:29101"))
	assert.Empty(t, res.Refine("unknown"))
	assert.Len(t, res.Refine(), len(res.Results))
}
