package search

import (
	"testing"

	"github.com/poiesic/casbert/ai/mock"
	"github.com/poiesic/casbert/mathml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDependencyMaths(t *testing.T) {
	s := newTestSearcher(t, allAssets)

	t.Run("two cycle", func(t *testing.T) {
		deps := s.DependencyMaths("v2")
		require.Len(t, deps, 1)
		require.Contains(t, deps, "v3")
		assert.Equal(t, `{\tau_{m}}`, deps["v3"].Name)
		assert.Equal(t, "algebraic", deps["v3"].Type)
		assert.Nil(t, deps["v3"].Init)
		assert.Empty(t, deps["v3"].Math)
	})

	t.Run("root is never listed", func(t *testing.T) {
		deps := s.DependencyMaths("v1")
		assert.Len(t, deps, 2)
		assert.NotContains(t, deps, "v1")
		assert.Equal(t, Dependency{
			Name: "{i_{Na}}",
			Math: []string{"i_Na = g_Na*m^3*h*(V - E_Na)"},
			Type: "algebraic",
		}, deps["v2"])
	})

	t.Run("diamond visits shared dependent once", func(t *testing.T) {
		deps := s.DependencyMaths("v4")
		assert.Len(t, deps, 3)
		require.Contains(t, deps, "v7")
		assert.Equal(t, `{\alpha_{m}}`, deps["v7"].Name)
		require.NotNil(t, deps["v7"].Init)
		assert.Equal(t, 0.1, *deps["v7"].Init)
		assert.Equal(t, []string{"alpha_m = 0.1*(V + 25)"}, deps["v7"].Math)
		assert.Equal(t, "m", deps["v5"].Name)
	})

	t.Run("missing dependent keeps its name", func(t *testing.T) {
		deps := s.DependencyMaths("v8")
		require.Len(t, deps, 1)
		assert.Equal(t, Dependency{Name: `{\beta_{h}}`, Math: []string{}}, deps["ghost"])
	})

	t.Run("unknown variable", func(t *testing.T) {
		assert.Empty(t, s.DependencyMaths("nope"))
	})

	t.Run("repeatable", func(t *testing.T) {
		assert.Equal(t, s.DependencyMaths("v4"), s.DependencyMaths("v4"))
		assert.Equal(t, s.DependencyMaths("v1"), s.DependencyMaths("v1"))
	})
}

func TestDependencyMaths_MarkupNames(t *testing.T) {
	s := newTestSearcher(t, allAssets, WithMathFormat(mathml.Web))

	deps := s.DependencyMaths("v2")
	require.Contains(t, deps, "v3")
	assert.Equal(t, "<msub><mi>&tau;</mi><mi>m</mi></msub>", deps["v3"].Name)

	parts, err := mathml.SplitMarkup(deps["v3"].Name)
	require.NoError(t, err)
	assert.Equal(t, []string{"tau", "m"}, parts)
}

func TestEntityMaths(t *testing.T) {
	s := newTestSearcher(t, allAssets)

	assert.Equal(t,
		[]string{"dV/dt = -i_Na", "i_Na = g_Na*m^3*h*(V - E_Na)"},
		s.EntityMaths("v1", "v2", "v1", "missing"))
	assert.Equal(t, []string{}, s.EntityMaths())
}

func TestEntityMaths_Transcoder(t *testing.T) {
	dollars := mathml.TranscoderFunc(func(source string, format mathml.Format) (string, error) {
		if format != mathml.LaTeX {
			return "", mathml.ErrUnknownFormat
		}
		return "$" + source + "$", nil
	})
	s, err := NewSearcher(testSnapshot(t), mock.NewMockProvider(), dollars, allAssets)
	require.NoError(t, err)
	defer s.Release()

	assert.Equal(t, []string{"$dV/dt = -i_Na$", "$   $"}, s.EntityMaths("v1"))
}

func TestEntitySedmls(t *testing.T) {
	s := newTestSearcher(t, allAssets)

	assert.Equal(t, []SedmlPlots{{
		URL: "workspace/hh/sim.sedml",
		Plots: []Plot{
			{ID: "s1.p1", Image: "s1.p1.png"},
			{ID: "s1.p2", Image: "s1.p2.png"},
		},
	}}, s.EntitySedmls("v2"))
	assert.Empty(t, s.EntitySedmls("v3"))
	assert.Empty(t, s.EntitySedmls("nope"))
}
