package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unchanged", input: "membrane potential", want: "membrane potential"},
		{name: "collapses whitespace", input: "  membrane\t\npotential  ", want: "membrane potential"},
		{name: "composes accents", input: "Purkinje fibre café", want: "Purkinje fibre café"},
		{name: "blank", input: " \n ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeQuery(tt.input))
		})
	}
}
