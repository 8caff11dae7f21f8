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

package core

import (
	"fmt"
	"math"
	"strings"
)

const (
	// DefaultTop is the result cap used when a query does not set one.
	DefaultTop = 20
	// DefaultMinSimilarity is the cosine threshold used when a query does not set one.
	DefaultMinSimilarity = 0.5
	// DefaultVariant is the index variant used when a query does not set one.
	DefaultVariant = VariantClassPredicate
)

// Query carries the parameters shared by every entity search.
type Query struct {
	Text          string
	Top           int
	MinSimilarity float32
	Variant       Variant

	// IncludeDependencies expands each variable result's dependency maths.
	IncludeDependencies bool
}

// NewQuery returns a query with the default cap, threshold and variant.
func NewQuery(text string) Query {
	return Query{
		Text:          text,
		Top:           DefaultTop,
		MinSimilarity: DefaultMinSimilarity,
		Variant:       DefaultVariant,
	}
}

// ValidateQuery validates query parameters.
//
// Validation rules:
//   - Text must not be blank
//   - Top must not be negative
//   - MinSimilarity must be within [-1, 1]
//   - Variant must be one of the known variants
//
// Every failure wraps ErrConfiguration.
func ValidateQuery(q Query) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: %w", ErrConfiguration, ErrEmptyQuery)
	}
	if err := ValidateRanking(q.Top, q.MinSimilarity); err != nil {
		return err
	}
	return ValidateVariant(q.Variant)
}

// ValidateRanking validates the result cap and similarity threshold.
func ValidateRanking(top int, minSimilarity float32) error {
	if top < 0 {
		return fmt.Errorf("%w: %w: %d", ErrConfiguration, ErrInvalidTopK, top)
	}
	if minSimilarity < -1 || minSimilarity > 1 || math.IsNaN(float64(minSimilarity)) {
		return fmt.Errorf("%w: %w: %v", ErrConfiguration, ErrInvalidMinSimilarity, minSimilarity)
	}
	return nil
}

// ValidateVariant checks that v names a recognized variant.
func ValidateVariant(v Variant) error {
	if v != VariantClass && v != VariantClassPredicate {
		return fmt.Errorf("%w: %w: %q", ErrConfiguration, ErrUnknownVariant, v)
	}
	return nil
}

// ParseEntityType converts a name to an EntityType.
func ParseEntityType(name string) (EntityType, error) {
	t := EntityType(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range SearchableEntities {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %w: %q", ErrConfiguration, ErrUnknownEntityType, name)
}

// ParseVariant converts a variant name to a Variant. The descriptive names
// "class-only" and "class+predicate" are accepted as well.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case string(VariantClass), "class-only":
		return VariantClass, nil
	case string(VariantClassPredicate), "class+predicate":
		return VariantClassPredicate, nil
	}
	return "", fmt.Errorf("%w: %w: %q", ErrConfiguration, ErrUnknownVariant, name)
}
