package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeQuery composes the query to NFC and collapses runs of whitespace,
// so equivalent spellings of the same text embed identically.
func normalizeQuery(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}
