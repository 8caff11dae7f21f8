package search

import (
	"maps"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/poiesic/casbert/core"
)

// Facet summarizes one ontology class over a result set.
type Facet struct {
	Name string `json:"name"`
	// Classes are the class ids that appear alongside this one, itself
	// included, in sorted order.
	Classes []string `json:"classes"`
	// Entities are the ids of the results citing the class, in rank order.
	Entities []string `json:"entities"`
}

// facetSource is what one result contributes to the facets: its id and the
// class sets it cites. Composite results cite one set per nested variable.
type facetSource struct {
	id      string
	classes []core.ClassSet
}

// buildFacets aggregates the class citations of results. Postings are kept
// as bitmaps over result positions so a result set can be refined by class.
func buildFacets(sources []facetSource) (map[string]*Facet, map[string]*roaring.Bitmap) {
	filter := make(map[string]*Facet)
	postings := make(map[string]*roaring.Bitmap)
	cooccur := make(map[string]map[string]struct{})

	for pos, src := range sources {
		for _, set := range src.classes {
			for classID, class := range set {
				f, ok := filter[classID]
				if !ok {
					f = &Facet{Name: class.Name}
					filter[classID] = f
					postings[classID] = roaring.New()
					cooccur[classID] = make(map[string]struct{})
				}
				postings[classID].Add(uint32(pos))
				for other := range set {
					cooccur[classID][other] = struct{}{}
				}
			}
		}
	}

	for classID, f := range filter {
		f.Classes = slices.Sorted(maps.Keys(cooccur[classID]))
		it := postings[classID].Iterator()
		for it.HasNext() {
			f.Entities = append(f.Entities, sources[it.Next()].id)
		}
	}
	return filter, postings
}

// Refine returns the results citing every given class, in rank order.
// No classes selects every result.
func (r *Result[R]) Refine(classIDs ...string) []R {
	if len(classIDs) == 0 {
		return slices.Clone(r.Results)
	}
	var hits *roaring.Bitmap
	for _, id := range classIDs {
		bm, ok := r.postings[id]
		if !ok {
			return []R{}
		}
		if hits == nil {
			hits = bm.Clone()
			continue
		}
		hits = roaring.And(hits, bm)
	}
	out := make([]R, 0, hits.GetCardinality())
	it := hits.Iterator()
	for it.HasNext() {
		out = append(out, r.Results[it.Next()])
	}
	return out
}
