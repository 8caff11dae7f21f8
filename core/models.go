package core

import (
	"math"
	"path"
	"strings"
)

// EntityType identifies one independently indexed and searchable collection.
type EntityType string

const (
	EntityVariable  EntityType = "variable"
	EntityComponent EntityType = "component"
	EntityCellml    EntityType = "cellml"
	EntitySedml     EntityType = "sedml"
	EntityImage     EntityType = "image"
)

// SearchableEntities lists the entity types that carry an embedding index,
// in the order results are reported by multi-type searches.
var SearchableEntities = []EntityType{
	EntityVariable,
	EntityComponent,
	EntityCellml,
	EntitySedml,
	EntityImage,
}

// Variant names an alternate embedding encoding of the same entity universe.
type Variant string

const (
	// VariantClass embeds the ontology class labels only.
	VariantClass Variant = "class"
	// VariantClassPredicate embeds class labels together with their predicates.
	VariantClassPredicate Variant = "class_predicate"
)

// VariableTypeState marks a variable integrated by the model's ODE system.
const VariableTypeState = "state"

// NoCluster is the cluster id given to models that belong to no cluster.
const NoCluster = "-1"

// Class is an ontology class annotation attached to an indexed entity.
type Class struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClassSet maps class ids to their annotation.
type ClassSet map[string]Class

// Merge returns a new set holding the classes of both sets.
// On id collisions the receiver's entry wins.
func (cs ClassSet) Merge(other ClassSet) ClassSet {
	out := make(ClassSet, len(cs)+len(other))
	for id, c := range other {
		out[id] = c
	}
	for id, c := range cs {
		out[id] = c
	}
	return out
}

// DependentRef names a variable that another variable's math depends on.
type DependentRef struct {
	ID   string
	Name string
}

// Variable is a model variable with its math, unit and dependency edges.
type Variable struct {
	ID        string
	Name      string
	ShortName string
	Type      string
	Init      float64 // NaN when the model gives no initial value
	Rate      float64 // NaN unless Type is VariableTypeState and a rate is known
	Unit      string
	Math      []string
	Dependent []DependentRef
	Plots     []string // "<sedmlId>.<plotId>"
	Component string
	Leaves    []string
}

// InitValue returns the initial value, or nil when it is unknown.
func (v *Variable) InitValue() *float64 {
	return OptionalFloat(v.Init)
}

// RateValue returns the rate for state variables, or nil otherwise.
func (v *Variable) RateValue() *float64 {
	if v.Type != VariableTypeState {
		return nil
	}
	return OptionalFloat(v.Rate)
}

// Component groups variables and math inside a Cellml model.
type Component struct {
	ID        string
	Name      string
	Cellml    string
	Variables []string
	Code      string
	Leaves    []string
}

// Cellml is a model document stored in a workspace.
type Cellml struct {
	ID         string
	URL        string
	Title      string
	ArticleRef string
	Abstract   string
	Workspace  string
	WorkingDir string
	File       string
	Images     []string
	Sedmls     []string
	Leaves     []string
}

// DisplayTitle falls back from the model title to the article reference
// and finally to the last segment of the model URL.
func (c *Cellml) DisplayTitle() string {
	if c.Title != "" {
		return c.Title
	}
	if c.ArticleRef != "" {
		return c.ArticleRef
	}
	trimmed := strings.TrimRight(c.URL, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// Path returns the model file path relative to the workspaces root.
func (c *Cellml) Path() string {
	if c.File == "" {
		return ""
	}
	return path.Join(c.WorkingDir, c.File)
}

// Series is one plotted curve of a simulation output.
type Series struct {
	X string
	Y string
}

// Output is a named plot of a simulation experiment.
type Output struct {
	ID     string
	Series []Series
}

// Sedml is a simulation experiment description.
type Sedml struct {
	ID        string
	URL       string
	Workspace string
	Cellml    string
	Variables map[string]float64
	Outputs   []Output
}

// Output returns the named plot, if present.
func (s *Sedml) Output(id string) (*Output, bool) {
	for i := range s.Outputs {
		if s.Outputs[i].ID == id {
			return &s.Outputs[i], true
		}
	}
	return nil, false
}

// Workspace is a repository of models, keyed by its URL.
type Workspace struct {
	URL       string
	Exposures []string
}

// Image is a rendered figure attached to a Cellml model.
type Image struct {
	ID     string
	Path   string
	Title  string
	Cellml string
}

// Unit is a physical unit definition.
type Unit struct {
	ID    string
	Names []string
	Text  string
}

// Math is a prefix-notation math fragment.
type Math struct {
	ID     string
	Source string
}

// PlotRef splits a "<sedmlId>.<plotId>" reference.
func PlotRef(ref string) (sedmlID, plotID string, ok bool) {
	sedmlID, plotID, ok = strings.Cut(ref, ".")
	if !ok || sedmlID == "" || plotID == "" {
		return "", "", false
	}
	return sedmlID, plotID, true
}

// FilterLeaves drops leaves that point at local files.
func FilterLeaves(leaves []string) []string {
	out := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		if strings.HasPrefix(leaf, "file:") {
			continue
		}
		out = append(out, leaf)
	}
	return out
}

// OptionalFloat returns nil for NaN and a pointer to f otherwise.
func OptionalFloat(f float64) *float64 {
	if math.IsNaN(f) {
		return nil
	}
	return &f
}
