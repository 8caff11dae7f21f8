// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package index ranks the entities of one searchable type by cosine
// similarity between a query embedding and precomputed vectors.
//
// An Index may hold several vector sets for the same entities, one per
// variant. All vector sets share the entity order, which is also the order
// used to break score ties.
package index

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/poiesic/casbert/ai"
	"github.com/poiesic/casbert/core"
)

var (
	ErrLengthMismatch    = errors.New("index arrays have different lengths")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrDuplicateID       = errors.New("duplicate entity id")
)

// Match is one ranked entity.
type Match struct {
	ID    string
	Score float32
}

// Data is the materialized content of an Index.
type Data struct {
	Entity  core.EntityType
	IDs     []string
	Classes []core.ClassSet
	Vectors map[core.Variant][][]float32
	// Texts holds the source text each vector was embedded from, when known.
	Texts map[core.Variant][]string
}

// Index is an immutable embedding index for one entity type.
type Index struct {
	data      Data
	norms     map[core.Variant][]float32
	dims      map[core.Variant]int
	positions map[string]int
}

// New validates d and builds an Index over it. The slices in d are owned by
// the Index afterwards.
func New(d Data) (*Index, error) {
	n := len(d.IDs)
	if d.Classes == nil {
		d.Classes = make([]core.ClassSet, n)
	}
	if len(d.Classes) != n {
		return nil, fmt.Errorf("%w: %d ids, %d class sets", ErrLengthMismatch, n, len(d.Classes))
	}
	ix := &Index{
		data:      d,
		norms:     make(map[core.Variant][]float32, len(d.Vectors)),
		dims:      make(map[core.Variant]int, len(d.Vectors)),
		positions: make(map[string]int, n),
	}
	for i, id := range d.IDs {
		if _, dup := ix.positions[id]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		ix.positions[id] = i
	}
	for variant, vectors := range d.Vectors {
		if len(vectors) != n {
			return nil, fmt.Errorf("%w: %d ids, %d %s vectors", ErrLengthMismatch, n, len(vectors), variant)
		}
		dim := 0
		norms := make([]float32, n)
		for i, v := range vectors {
			if i == 0 {
				dim = len(v)
			} else if len(v) != dim {
				return nil, fmt.Errorf("%w: %s vector %d has %d, want %d", ErrDimensionMismatch, variant, i, len(v), dim)
			}
			norms[i] = norm(v)
		}
		ix.norms[variant] = norms
		ix.dims[variant] = dim
	}
	for variant, texts := range d.Texts {
		if len(texts) != n {
			return nil, fmt.Errorf("%w: %d ids, %d %s texts", ErrLengthMismatch, n, len(texts), variant)
		}
	}
	return ix, nil
}

// Entity returns the entity type the index ranks.
func (ix *Index) Entity() core.EntityType { return ix.data.Entity }

// Len returns the number of indexed entities.
func (ix *Index) Len() int { return len(ix.data.IDs) }

// IDs returns the indexed ids in storage order.
func (ix *Index) IDs() []string { return slices.Clone(ix.data.IDs) }

// HasVariant reports whether vectors exist for variant.
func (ix *Index) HasVariant(variant core.Variant) bool {
	_, ok := ix.data.Vectors[variant]
	return ok
}

// Variants returns the variants with vectors, sorted by name.
func (ix *Index) Variants() []core.Variant {
	return slices.Sorted(maps.Keys(ix.data.Vectors))
}

// Dimension returns the vector length of variant, or zero.
func (ix *Index) Dimension(variant core.Variant) int { return ix.dims[variant] }

// Classes returns the class annotations of id. Unknown ids yield nil.
func (ix *Index) Classes(id string) core.ClassSet {
	i, ok := ix.positions[id]
	if !ok {
		return nil
	}
	return ix.data.Classes[i]
}

// Contains reports whether id is indexed.
func (ix *Index) Contains(id string) bool {
	_, ok := ix.positions[id]
	return ok
}

// Texts returns the stored source texts of variant, if any.
func (ix *Index) Texts(variant core.Variant) []string {
	return ix.data.Texts[variant]
}

// Data returns the index content for persisting. Callers must not modify it.
func (ix *Index) Data() Data { return ix.data }

// WithVectors returns a copy of the index whose variant vectors are replaced.
func (ix *Index) WithVectors(variant core.Variant, vectors [][]float32) (*Index, error) {
	d := ix.data
	d.Vectors = maps.Clone(ix.data.Vectors)
	if d.Vectors == nil {
		d.Vectors = make(map[core.Variant][][]float32, 1)
	}
	d.Vectors[variant] = vectors
	return New(d)
}

// Search encodes query with embedder and ranks it against variant.
//
// At most topK matches are returned in non-increasing score order; ranking
// stops at the first score below minSimilarity. Unknown variants and out of
// range parameters fail with errors wrapping core.ErrConfiguration.
func (ix *Index) Search(ctx context.Context, embedder ai.Embedder, query string, topK int, minSimilarity float32, variant core.Variant) ([]Match, error) {
	if err := ix.check(topK, minSimilarity, variant); err != nil {
		return nil, err
	}
	if topK == 0 || ix.Len() == 0 {
		return []Match{}, nil
	}
	vec, err := embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return ix.Rank(vec, topK, minSimilarity, variant)
}

// Rank orders the entities of variant by cosine similarity to vec.
func (ix *Index) Rank(vec []float32, topK int, minSimilarity float32, variant core.Variant) ([]Match, error) {
	if err := ix.check(topK, minSimilarity, variant); err != nil {
		return nil, err
	}
	vectors := ix.data.Vectors[variant]
	if len(vectors) > 0 && len(vec) != ix.dims[variant] {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(vec), ix.dims[variant])
	}

	qnorm := norm(vec)
	norms := ix.norms[variant]
	scores := make([]float32, len(vectors))
	for i, v := range vectors {
		scores[i] = cosine(vec, v, qnorm, norms[i])
	}

	order := make([]int, len(vectors))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case scores[a] > scores[b]:
			return -1
		case scores[a] < scores[b]:
			return 1
		}
		return 0
	})

	matches := make([]Match, 0, min(topK, len(order)))
	for _, i := range order[:min(topK, len(order))] {
		if scores[i] < minSimilarity {
			break
		}
		matches = append(matches, Match{ID: ix.data.IDs[i], Score: scores[i]})
	}
	return matches, nil
}

func (ix *Index) check(topK int, minSimilarity float32, variant core.Variant) error {
	if err := core.ValidateRanking(topK, minSimilarity); err != nil {
		return err
	}
	if err := core.ValidateVariant(variant); err != nil {
		return err
	}
	if !ix.HasVariant(variant) {
		return fmt.Errorf("%w: %w: no %q vectors for %s", core.ErrConfiguration, core.ErrUnknownVariant, variant, ix.data.Entity)
	}
	return nil
}

func norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}

func cosine(a, b []float32, na, nb float32) float32 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(dot / (float64(na) * float64(nb)))
}

// Normalize scales v to unit length in place and returns it.
func Normalize(v []float32) []float32 {
	n := norm(v)
	if n == 0 {
		return v
	}
	for i := range v {
		v[i] /= n
	}
	return v
}
