package search

import (
	"slices"

	"github.com/poiesic/casbert/core"
)

// DependencyMaths returns every variable reachable from varID through the
// dependent relation, keyed by id. The walk keeps a visited set seeded with
// varID, so cycles and diamonds terminate, every dependent appears once and
// varID itself never appears. A dependent without a record is listed with
// its name only and not expanded.
func (s *Searcher) DependencyMaths(varID string) map[string]Dependency {
	v, ok := s.snapshot.Variables().Get(varID)
	if !ok {
		s.logger.Debug("variable not found", "id", varID, "err", core.ErrNotFound)
		return map[string]Dependency{}
	}
	return s.dependencies(v)
}

func (s *Searcher) dependencies(root *core.Variable) map[string]Dependency {
	out := make(map[string]Dependency)
	visited := map[string]bool{root.ID: true}

	stack := reversed(root.Dependent)
	for len(stack) > 0 {
		ref := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[ref.ID] {
			continue
		}
		visited[ref.ID] = true

		dep := Dependency{Name: s.renderName(ref.Name), Math: []string{}}
		v, ok := s.snapshot.Variables().Get(ref.ID)
		if !ok {
			s.logger.Debug("dependent variable not found", "id", ref.ID, "root", root.ID, "err", core.ErrNotFound)
			out[ref.ID] = dep
			continue
		}
		dep.Type = v.Type
		dep.Init = v.InitValue()
		dep.Math = s.renderMaths(v.Math)
		out[ref.ID] = dep

		stack = append(stack, reversed(v.Dependent)...)
	}
	return out
}

// reversed returns refs back to front so that popping a stack visits them
// in stored order.
func reversed(refs []core.DependentRef) []core.DependentRef {
	out := slices.Clone(refs)
	slices.Reverse(out)
	return out
}

// EntityMaths returns the rendered maths of the given variables without
// duplicates, in order of first appearance.
func (s *Searcher) EntityMaths(varIDs ...string) []string {
	var ids []string
	for _, id := range varIDs {
		v, ok := s.snapshot.Variables().Get(id)
		if !ok {
			s.logger.Debug("variable not found", "id", id, "err", core.ErrNotFound)
			continue
		}
		ids = append(ids, v.Math...)
	}

	out := []string{}
	seen := make(map[string]bool)
	for _, text := range s.renderMaths(ids) {
		if !seen[text] {
			seen[text] = true
			out = append(out, text)
		}
	}
	return out
}

// EntitySedmls returns the plots variable varID appears on, grouped by
// simulation experiment.
func (s *Searcher) EntitySedmls(varID string) []SedmlPlots {
	v, ok := s.snapshot.Variables().Get(varID)
	if !ok {
		s.logger.Debug("variable not found", "id", varID, "err", core.ErrNotFound)
		return []SedmlPlots{}
	}
	return s.sedmlsOf(v)
}

func (s *Searcher) sedmlsOf(v *core.Variable) []SedmlPlots {
	out := []SedmlPlots{}
	bySedml := make(map[string]int)
	for _, ref := range v.Plots {
		sedmlID, _, ok := core.PlotRef(ref)
		if !ok {
			s.logger.Debug("malformed plot reference", "ref", ref, "variable", v.ID)
			continue
		}
		sedml, ok := s.snapshot.Sedmls().Get(sedmlID)
		if !ok {
			s.logger.Debug("sedml not found", "id", sedmlID, "variable", v.ID, "err", core.ErrNotFound)
			continue
		}
		i, ok := bySedml[sedml.ID]
		if !ok {
			i = len(out)
			bySedml[sedml.ID] = i
			out = append(out, SedmlPlots{URL: s.url(sedml.URL)})
		}
		out[i].Plots = append(out[i].Plots, Plot{ID: ref, Image: plotImage(ref)})
	}
	return out
}
