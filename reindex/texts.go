package reindex

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
)

// SourceTexts returns the text to embed for every entry of ix under
// variant, in index order. Stored texts win. Without them the class variant
// is derived from the class names of each entry, ordered by class id.
func SourceTexts(ix *index.Index, variant core.Variant) ([]string, error) {
	if err := core.ValidateVariant(variant); err != nil {
		return nil, err
	}
	if texts := ix.Texts(variant); texts != nil {
		return slices.Clone(texts), nil
	}
	if variant != core.VariantClass {
		return nil, fmt.Errorf("%w: %s %s", ErrNoSourceTexts, ix.Entity(), variant)
	}

	ids := ix.IDs()
	texts := make([]string, len(ids))
	for i, id := range ids {
		classes := ix.Classes(id)
		names := make([]string, 0, len(classes))
		for _, classID := range slices.Sorted(maps.Keys(classes)) {
			names = append(names, classes[classID].Name)
		}
		texts[i] = strings.Join(names, " ")
	}
	return texts, nil
}
