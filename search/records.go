package search

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/poiesic/casbert/core"
)

// Result is the outcome of one typed search: the resolved records in rank
// order and the facet map over their ontology classes.
type Result[R any] struct {
	Results []R               `json:"result"`
	Filter  map[string]*Facet `json:"filter"`
	// Stale counts index matches skipped because their record is gone.
	Stale int `json:"stale,omitempty"`

	postings map[string]*roaring.Bitmap
}

// AllResults holds one Result per searchable entity type.
type AllResults struct {
	Variables  *Result[VariableResult]  `json:"variables"`
	Components *Result[ComponentResult] `json:"components"`
	Cellmls    *Result[CellmlResult]    `json:"cellmls"`
	Sedmls     *Result[SedmlResult]     `json:"sedmls"`
	Images     *Result[ImageResult]     `json:"images"`
}

// Unit is the display form of a unit.
type Unit struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// ModelContext is the owning model of a result and where it is published.
type ModelContext struct {
	CellmlURL    string   `json:"cellmlUrl"`
	CellmlTitle  string   `json:"cellmlTitle"`
	WorkspaceURL string   `json:"workspaceUrl"`
	Exposures    []string `json:"exposures"`
}

// VariableSummary is the part of a variable shown wherever it appears.
type VariableSummary struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Init *float64 `json:"init"`
	Type string   `json:"type"`
	// Rate is only reported for state variables.
	Rate    *float64      `json:"rate,omitempty"`
	Unit    Unit          `json:"unit"`
	Math    []string      `json:"math"`
	Classes core.ClassSet `json:"classes"`
}

// VariableResult is a fully joined variable.
type VariableResult struct {
	VariableSummary
	ModelContext

	Score          float32               `json:"score"`
	Leaves         []string              `json:"rdfLeaves"`
	Component      string                `json:"component"`
	CompLeaves     []string              `json:"compLeaves"`
	Sedmls         []SedmlPlots          `json:"sedmls"`
	CellmlImages   []ImageRef            `json:"cellmlImages"`
	SimilarCellmls []string              `json:"similarCellmls"`
	Dependent      map[string]Dependency `json:"dependent,omitempty"`
}

// Dependency is one variable reached through the dependent relation.
type Dependency struct {
	Name string   `json:"name"`
	Math []string `json:"math"`
	Type string   `json:"type"`
	Init *float64 `json:"init"`
}

// ComponentResult is a fully joined component.
type ComponentResult struct {
	ModelContext

	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Score   float32       `json:"score"`
	Math    []string      `json:"math"`
	Classes core.ClassSet `json:"classes"`
}

// CellmlResult is a fully joined model.
type CellmlResult struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Title     string        `json:"title"`
	Score     float32       `json:"score"`
	Workspace string        `json:"workspace"`
	Exposures []string      `json:"exposure"`
	Abstract  string        `json:"abstract"`
	Images    []ImageRef    `json:"image"`
	Sedmls    []SedmlPlots  `json:"sedmls"`
	Classes   core.ClassSet `json:"classes"`
}

// SedmlResult is a fully joined simulation experiment.
type SedmlResult struct {
	ID          string        `json:"id"`
	URL         string        `json:"url"`
	Score       float32       `json:"score"`
	CellmlURL   string        `json:"cellmlUrl"`
	CellmlTitle string        `json:"cellmlTitle"`
	Plots       []Plot        `json:"plots"`
	Workspace   string        `json:"workspace"`
	Exposures   []string      `json:"exposure"`
	Classes     core.ClassSet `json:"classes"`
}

// ImageResult is a fully joined image.
type ImageResult struct {
	ID           string        `json:"id"`
	Path         string        `json:"path"`
	Title        string        `json:"title"`
	Cellml       string        `json:"cellml"`
	Score        float32       `json:"score"`
	URL          string        `json:"url"`
	CellmlURL    string        `json:"cellmlUrl"`
	WorkspaceURL string        `json:"workspaceUrl"`
	Exposures    []string      `json:"exposures"`
	Classes      core.ClassSet `json:"classes"`
}

// PlotResult is one plot found by SearchPlots.
type PlotResult struct {
	ModelContext

	ID        string            `json:"id"`
	Image     string            `json:"path"`
	URL       string            `json:"url"`
	Variables []VariableSummary `json:"variable"`
}

// SedmlPlots lists plots of one simulation experiment.
type SedmlPlots struct {
	URL   string `json:"id"`
	Plots []Plot `json:"plots"`
}

// Plot is one output of a simulation experiment.
type Plot struct {
	ID        string         `json:"id"`
	Image     string         `json:"url"`
	Variables []PlotVariable `json:"variables,omitempty"`
}

// PlotVariable is a variable drawn on a plot, with the initial value the
// experiment assigns it.
type PlotVariable struct {
	ID      string        `json:"id"`
	Init    *float64      `json:"init"`
	Math    []string      `json:"math"`
	Classes core.ClassSet `json:"classes"`
}

// ImageRef is an image shown next to a model. Meta lists every model,
// workspace and exposure the image was found through.
type ImageRef struct {
	URL   string    `json:"url"`
	Title string    `json:"title"`
	Meta  ImageMeta `json:"meta"`
}

// ImageMeta cites where an image comes from.
type ImageMeta struct {
	Cellml    []string `json:"cellml"`
	Workspace []string `json:"workspace"`
	Exposure  []string `json:"exposure"`
}

func (m ImageMeta) union(other ImageMeta) ImageMeta {
	return ImageMeta{
		Cellml:    unionStrings(m.Cellml, other.Cellml),
		Workspace: unionStrings(m.Workspace, other.Workspace),
		Exposure:  unionStrings(m.Exposure, other.Exposure),
	}
}

func (m ImageMeta) clone() ImageMeta {
	return m.union(ImageMeta{})
}

func unionStrings(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]bool, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
