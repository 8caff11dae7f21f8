package search

import (
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/mathml"
)

// summarize builds the display summary of v.
func (s *Searcher) summarize(v *core.Variable) VariableSummary {
	return VariableSummary{
		ID:      v.ID,
		Name:    v.Name,
		Init:    v.InitValue(),
		Type:    v.Type,
		Rate:    v.RateValue(),
		Unit:    s.unit(v.Unit),
		Math:    s.renderMaths(v.Math),
		Classes: s.classes(core.EntityVariable, v.ID),
	}
}

// missingSummary is the summary of a referenced variable that has no record.
func (s *Searcher) missingSummary(id string) VariableSummary {
	s.logger.Debug("variable not found", "id", id, "err", core.ErrNotFound)
	return VariableSummary{
		ID:      id,
		Math:    []string{},
		Classes: s.classes(core.EntityVariable, id),
	}
}

// unit returns the first name and the text of unit id.
func (s *Searcher) unit(id string) Unit {
	if id == "" {
		return Unit{}
	}
	u, ok := s.snapshot.Units().Get(id)
	if !ok {
		s.logger.Debug("unit not found", "id", id, "err", core.ErrNotFound)
		return Unit{}
	}
	out := Unit{Text: u.Text}
	if len(u.Names) > 0 {
		out.Name = u.Names[0]
	}
	return out
}

// renderMaths transcodes the math fragments ids into the searcher's format.
// Missing and malformed fragments are omitted.
func (s *Searcher) renderMaths(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		m, ok := s.snapshot.Maths().Get(id)
		if !ok {
			s.logger.Debug("math not found", "id", id, "err", core.ErrNotFound)
			continue
		}
		text, err := s.transcoder.Transcode(m.Source, s.format)
		if err != nil {
			s.logger.Debug("omitting math fragment", "id", id, "format", s.format, "err", err)
			continue
		}
		out = append(out, text)
	}
	return out
}

// renderName writes a compound variable name as nested subscripts in the
// searcher's format.
func (s *Searcher) renderName(name string) string {
	switch s.format {
	case mathml.Web, mathml.Jupyter:
		return mathml.SubscriptMarkup(name, s.format)
	default:
		return mathml.SubscriptLaTeX(name)
	}
}

// ownerModel follows variable -> component -> model.
func (s *Searcher) ownerModel(v *core.Variable) (string, *core.Component) {
	comp, ok := s.snapshot.Components().Get(v.Component)
	if !ok {
		s.logger.Debug("component not found", "id", v.Component, "variable", v.ID, "err", core.ErrNotFound)
		return "", nil
	}
	return comp.Cellml, comp
}

// modelContext resolves the model, workspace and exposures of cellml id.
func (s *Searcher) modelContext(id string) ModelContext {
	ctx := ModelContext{Exposures: []string{}}
	m, ok := s.snapshot.Cellmls().Get(id)
	if !ok {
		if id != "" {
			s.logger.Debug("model not found", "id", id, "err", core.ErrNotFound)
		}
		return ctx
	}
	ctx.CellmlURL = s.url(m.URL)
	ctx.CellmlTitle = m.DisplayTitle()
	ctx.WorkspaceURL = s.url(m.Workspace)
	ctx.Exposures = s.urls(s.exposures(m.Workspace))
	return ctx
}

// exposures returns the stored exposure addresses of workspace url.
func (s *Searcher) exposures(url string) []string {
	if url == "" {
		return []string{}
	}
	w, ok := s.snapshot.Workspaces().Get(url)
	if !ok {
		s.logger.Debug("workspace not found", "url", url, "err", core.ErrNotFound)
		return []string{}
	}
	return w.Exposures
}

// plots lists every output of sedml with the variables it draws.
func (s *Searcher) plots(sedml *core.Sedml) []Plot {
	out := make([]Plot, 0, len(sedml.Outputs))
	for i := range sedml.Outputs {
		o := &sedml.Outputs[i]
		ref := sedml.ID + "." + o.ID
		p := Plot{ID: ref, Image: plotImage(ref), Variables: []PlotVariable{}}
		for _, id := range plottedVariables(o) {
			pv := PlotVariable{ID: id, Math: []string{}, Classes: s.classes(core.EntityVariable, id)}
			if init, ok := sedml.Variables[id]; ok {
				pv.Init = core.OptionalFloat(init)
			}
			if v, ok := s.snapshot.Variables().Get(id); ok {
				pv.Math = s.renderMaths(v.Math)
			} else {
				s.logger.Debug("plotted variable not found", "id", id, "plot", ref, "err", core.ErrNotFound)
			}
			p.Variables = append(p.Variables, pv)
		}
		out = append(out, p)
	}
	return out
}

// plottedVariables returns the distinct variables drawn by o, x before y
// within each series, in series order.
func plottedVariables(o *core.Output) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, series := range o.Series {
		for _, id := range []string{series.X, series.Y} {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func plotImage(ref string) string {
	return ref + ".png"
}
