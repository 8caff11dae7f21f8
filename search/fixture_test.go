package search

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/casbert/ai/mock"
	"github.com/poiesic/casbert/assets"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
	"github.com/poiesic/casbert/mathml"
	"github.com/poiesic/casbert/storage"
	"github.com/stretchr/testify/require"
)

// fakeAssets reports the listed names as present.
type fakeAssets map[string]bool

func (f fakeAssets) Exists(_ context.Context, name string) bool { return f[name] }

var allAssets = fakeAssets{
	"hh/figs/hh.png":    true,
	"noble/diagram.png": true,
}

var nan = math.NaN()

func class(id, name string) core.ClassSet {
	return core.ClassSet{id: {ID: id, Name: name}}
}

// indexOf embeds texts with the mock embedder so that querying a text
// verbatim scores 1 against its own entry.
func indexOf(t *testing.T, entity core.EntityType, ids, texts []string, classes []core.ClassSet) *index.Index {
	t.Helper()
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = mock.DeterministicVector(text, mock.DefaultDimension)
	}
	ix, err := index.New(index.Data{
		Entity:  entity,
		IDs:     ids,
		Classes: classes,
		Vectors: map[core.Variant][][]float32{
			core.VariantClass:          vectors,
			core.VariantClassPredicate: vectors,
		},
	})
	require.NoError(t, err)
	return ix
}

func testCatalog(t *testing.T) storage.Catalog {
	return storage.Catalog{
		Variables: []core.Variable{
			{
				ID: "v1", Name: "V", Type: "state", Init: -75, Rate: 0.5, Unit: "u1",
				Math:      []string{"mth1", "mthBad"},
				Dependent: []core.DependentRef{{ID: "v2", Name: "i_Na"}},
				Plots:     []string{"s1.p1"},
				Component: "c1",
				Leaves:    []string{"http://identifiers.org/GO:0005886", "file:hh.cellml#V"},
			},
			{
				ID: "v2", Name: "i_Na", Type: "algebraic", Init: nan, Rate: 3, Unit: "missing",
				Math:      []string{"mth2"},
				Dependent: []core.DependentRef{{ID: "v3", Name: "tau_m"}},
				Plots:     []string{"s1.p1", "s1.p2"},
				Component: "c1",
			},
			{
				ID: "v3", Name: "tau_m", Type: "algebraic", Init: nan, Rate: nan,
				Dependent: []core.DependentRef{{ID: "v2", Name: "i_Na"}},
				Component: "c1",
			},
			{
				ID: "v4", Name: "h", Type: "state", Init: 0.6, Rate: nan,
				Dependent: []core.DependentRef{{ID: "v5", Name: "m"}, {ID: "v6", Name: "n"}},
				Component: "c2",
			},
			{ID: "v5", Name: "m", Init: nan, Rate: nan, Component: "c2", Dependent: []core.DependentRef{{ID: "v7", Name: "alpha_m"}}},
			{ID: "v6", Name: "n", Init: nan, Rate: nan, Component: "c2", Dependent: []core.DependentRef{{ID: "v7", Name: "alpha_m"}}},
			{ID: "v7", Name: "alpha_m", Type: "algebraic", Init: 0.1, Rate: nan, Component: "c2", Math: []string{"mth3"}},
			{ID: "v8", Name: "x", Init: nan, Rate: nan, Component: "ghost", Dependent: []core.DependentRef{{ID: "ghost", Name: "beta_h"}}},
		},
		Components: []core.Component{
			{ID: "c1", Name: "membrane", Cellml: "m1", Variables: []string{"v1", "v2", "v3"}, Leaves: []string{"http://identifiers.org/GO:0016020"}},
			{ID: "c2", Name: "gate", Cellml: "m4", Variables: []string{"v5", "v4"}},
		},
		Cellmls: []core.Cellml{
			{ID: "m1", URL: "exposure/hh/hh.cellml", Title: "Hodgkin Huxley", Abstract: "Squid axon.", Workspace: "workspace/hh", WorkingDir: "hh", File: "hh.cellml", Images: []string{"i1", "i2"}, Sedmls: []string{"s1", "sGone"}},
			{ID: "m2", URL: "exposure/noble/n.cellml", ArticleRef: "Noble 1962", Workspace: "workspace/noble", WorkingDir: "noble", File: "n.cellml", Images: []string{"i3"}},
			{ID: "m3", URL: "exposure/noble/b.cellml", Workspace: "workspace/noble", WorkingDir: "noble", File: "b.cellml", Images: []string{"i3b"}},
			{ID: "m4", URL: "exposure/gate/g.cellml", Title: "Gating", Workspace: "workspace/gate", WorkingDir: "gate", File: "g.cellml", Images: []string{"i4"}},
		},
		Sedmls: []core.Sedml{
			{
				ID: "s1", URL: "workspace/hh/sim.sedml", Workspace: "workspace/hh", Cellml: "m1",
				Variables: map[string]float64{"v1": -75, "v2": 0},
				Outputs: []core.Output{
					{ID: "p1", Series: []core.Series{{X: "v1", Y: "v2"}, {X: "v1", Y: "v3"}}},
					{ID: "p2", Series: []core.Series{{X: "v2", Y: "v2"}}},
				},
			},
		},
		Workspaces: []core.Workspace{
			{URL: "workspace/hh", Exposures: []string{"e/hh1", "e/hh2"}},
			{URL: "workspace/noble", Exposures: []string{"e/noble"}},
		},
		Images: []core.Image{
			{ID: "i1", Path: "figs/hh.png", Title: "HH diagram", Cellml: "m1"},
			{ID: "i2", Path: "absent.png", Cellml: "m1"},
			{ID: "i3", Path: "diagram.png", Title: "Noble diagram", Cellml: "m2"},
			{ID: "i3b", Path: "diagram.png", Title: "Noble diagram", Cellml: "m3"},
			{ID: "i4", Path: "gate.png", Cellml: "m4"},
		},
		Units: []core.Unit{{ID: "u1", Names: []string{"millivolt", "mV"}, Text: "mV"}},
		Maths: []core.Math{
			{ID: "mth1", Source: "dV/dt = -i_Na"},
			{ID: "mth2", Source: "i_Na = g_Na*m^3*h*(V - E_Na)"},
			{ID: "mth3", Source: "alpha_m = 0.1*(V + 25)"},
			{ID: "mthBad", Source: "   "},
		},
		Indexes: []*index.Index{
			indexOf(t, core.EntityVariable,
				[]string{"v1", "v2", "v3", "v4", "gone"},
				[]string{"membrane potential", "sodium current", "time constant", "gating variable", "stale entry"},
				[]core.ClassSet{
					class("GO:0005886", "plasma membrane").Merge(class("OPB:00506", "electrical potential")),
					class("CHEBI:29101", "sodium"),
					{},
					class("OPB:00506", "electrical potential"),
					{},
				}),
			indexOf(t, core.EntityComponent,
				[]string{"c1", "c2"},
				[]string{"membrane", "gate"},
				[]core.ClassSet{class("GO:0016020", "membrane"), {}}),
			indexOf(t, core.EntityCellml,
				[]string{"m1", "m2", "m3", "m4"},
				[]string{"squid axon", "purkinje fibre", "ventricular myocyte", "gating"},
				nil),
			indexOf(t, core.EntitySedml,
				[]string{"s1"},
				[]string{"action potential simulation"},
				nil),
			indexOf(t, core.EntityImage,
				[]string{"i1", "i3", "nope"},
				[]string{"hh diagram", "noble diagram", "missing"},
				nil),
		},
		Clusters: map[string][]string{
			"5":  {"m1", "m2", "m3"},
			"-1": {"m4"},
		},
	}
}

func testSnapshot(t *testing.T) *storage.Snapshot {
	t.Helper()
	snap, err := storage.NewSnapshot(testCatalog(t))
	require.NoError(t, err)
	return snap
}

// newTestSearcher builds a searcher that renders maths as stored code.
func newTestSearcher(t *testing.T, store assets.Store, opts ...Option) *Searcher {
	t.Helper()
	opts = append([]Option{WithMathFormat(mathml.Code)}, opts...)
	s, err := NewSearcher(testSnapshot(t), mock.NewMockProvider(), mathml.Passthrough{}, store, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

func query(text string) core.Query { return core.NewQuery(text) }
