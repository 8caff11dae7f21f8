package search

import (
	"context"
	"fmt"

	"github.com/poiesic/casbert/core"
)

// plotCandidates is how many variables SearchPlots ranks to find Top plots.
const plotCandidates = 2000

// SearchPlots ranks variables against q and returns up to q.Top distinct
// plots drawing them, in the rank order of their best variable. Each plot
// lists every variable it draws. Facets are harvested from those variables.
func (s *Searcher) SearchPlots(ctx context.Context, q core.Query) (*Result[PlotResult], error) {
	q, err := s.prepare(q)
	if err != nil {
		return nil, err
	}
	ix, ok := s.snapshot.Index(core.EntityVariable)
	if !ok {
		return nil, fmt.Errorf("%w: %w: no index for %s", core.ErrConfiguration, core.ErrUnknownEntityType, core.EntityVariable)
	}

	s.monitor.Start(core.EntityVariable, q.Text)

	result := &Result[PlotResult]{Results: []PlotResult{}}
	if q.Top > 0 {
		matches, err := ix.Search(ctx, s.embedder, q.Text, max(plotCandidates, q.Top), q.MinSimilarity, q.Variant)
		if err != nil {
			s.logger.Error("index search failed", "entity", core.EntityVariable, "err", err)
			return nil, err
		}
		s.monitor.AfterIndexSearch(core.EntityVariable, matches)

		var refs []string
		seen := make(map[string]bool)
	collect:
		for _, m := range matches {
			v, ok := s.snapshot.Variables().Get(m.ID)
			if !ok {
				s.stale(core.EntityVariable, m.ID)
				result.Stale++
				continue
			}
			for _, ref := range v.Plots {
				if seen[ref] {
					continue
				}
				seen[ref] = true
				refs = append(refs, ref)
				if len(refs) == q.Top {
					break collect
				}
			}
		}

		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if p, ok := s.plotResult(ref); ok {
				result.Results = append(result.Results, p)
			}
		}
	}

	sources := make([]facetSource, len(result.Results))
	for i, p := range result.Results {
		sources[i] = facetSource{id: p.ID}
		for _, v := range p.Variables {
			sources[i].classes = append(sources[i].classes, v.Classes)
		}
	}
	result.Filter, result.postings = buildFacets(sources)

	s.monitor.Finish(core.EntityVariable, len(result.Results))
	return result, nil
}

// plotResult resolves plot reference ref. References to missing experiments
// or outputs are dropped.
func (s *Searcher) plotResult(ref string) (PlotResult, bool) {
	sedmlID, plotID, ok := core.PlotRef(ref)
	if !ok {
		s.logger.Debug("malformed plot reference", "ref", ref)
		return PlotResult{}, false
	}
	sedml, ok := s.snapshot.Sedmls().Get(sedmlID)
	if !ok {
		s.logger.Debug("sedml not found", "id", sedmlID, "plot", ref, "err", core.ErrNotFound)
		return PlotResult{}, false
	}
	output, ok := sedml.Output(plotID)
	if !ok {
		s.logger.Debug("plot not found", "plot", ref, "err", core.ErrNotFound)
		return PlotResult{}, false
	}

	p := PlotResult{
		ModelContext: s.modelContext(sedml.Cellml),
		ID:           ref,
		Image:        plotImage(ref),
		URL:          s.url(sedml.URL),
		Variables:    []VariableSummary{},
	}
	if sedml.Workspace != "" {
		p.WorkspaceURL = s.url(sedml.Workspace)
	}
	for _, id := range plottedVariables(output) {
		v, ok := s.snapshot.Variables().Get(id)
		if !ok {
			p.Variables = append(p.Variables, s.missingSummary(id))
			continue
		}
		p.Variables = append(p.Variables, s.summarize(v))
	}
	return p, true
}
