package search

import (
	"context"
	"fmt"

	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
)

// hop joins one cross reference of src into the record under construction.
// Hops never fail: a reference that resolves to nothing leaves the default.
type hop[S, R any] func(ctx context.Context, src *S, r *R)

// joinPlan describes how matches of one entity type become records of R.
type joinPlan[S, R any] struct {
	entity core.EntityType
	// lookup fetches the relational record of a match.
	lookup func(id string) (*S, bool)
	// base builds the record from the match and its own attributes.
	base func(m index.Match, src *S) R
	// hops run in order after base.
	hops []hop[S, R]
	// facets reports the id and class sets a record contributes to the filter.
	facets func(r *R) facetSource
}

// resolve ranks q against the plan's index and resolves every surviving
// match. Matches without a relational record are skipped.
func resolve[S, R any](ctx context.Context, s *Searcher, plan joinPlan[S, R], q core.Query) (*Result[R], error) {
	q, err := s.prepare(q)
	if err != nil {
		return nil, err
	}
	ix, ok := s.snapshot.Index(plan.entity)
	if !ok {
		return nil, fmt.Errorf("%w: %w: no index for %s", core.ErrConfiguration, core.ErrUnknownEntityType, plan.entity)
	}

	s.monitor.Start(plan.entity, q.Text)

	matches, err := ix.Search(ctx, s.embedder, q.Text, q.Top, q.MinSimilarity, q.Variant)
	if err != nil {
		s.logger.Error("index search failed", "entity", plan.entity, "err", err)
		return nil, err
	}
	s.monitor.AfterIndexSearch(plan.entity, matches)

	result := &Result[R]{Results: make([]R, 0, len(matches))}
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src, ok := plan.lookup(m.ID)
		if !ok {
			s.stale(plan.entity, m.ID)
			result.Stale++
			continue
		}
		r := plan.base(m, src)
		for _, h := range plan.hops {
			h(ctx, src, &r)
		}
		result.Results = append(result.Results, r)
	}

	sources := make([]facetSource, len(result.Results))
	for i := range result.Results {
		sources[i] = plan.facets(&result.Results[i])
	}
	result.Filter, result.postings = buildFacets(sources)

	s.monitor.Finish(plan.entity, len(result.Results))
	return result, nil
}

func (s *Searcher) stale(entity core.EntityType, id string) {
	s.logger.Warn("skipping index match without record", "entity", entity, "id", id, "err", core.ErrStaleReference)
	s.monitor.StaleReference(entity, id)
}

// classes returns the ontology classes the index of entity attaches to id.
func (s *Searcher) classes(entity core.EntityType, id string) core.ClassSet {
	ix, ok := s.snapshot.Index(entity)
	if !ok {
		return core.ClassSet{}
	}
	cs := ix.Classes(id)
	if cs == nil {
		return core.ClassSet{}
	}
	return cs
}
