package importer

import (
	"math"

	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
)

// nanIfNull maps JSON null to NaN.
func nanIfNull(n *float64) float64 {
	if n == nil {
		return math.NaN()
	}
	return *n
}

type dependentRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type variableRecord struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ShortName string            `json:"short_name"`
	Type      string            `json:"type"`
	Init      *float64          `json:"init"`
	Rate      *float64          `json:"rate"`
	Unit      string            `json:"unit"`
	Math      []string          `json:"math"`
	Dependent []dependentRecord `json:"dependent"`
	Plots     []string          `json:"plot"`
	Component string            `json:"component"`
	Leaves    []string          `json:"leaves"`
}

func (r variableRecord) toCore() core.Variable {
	deps := make([]core.DependentRef, len(r.Dependent))
	for i, d := range r.Dependent {
		deps[i] = core.DependentRef{ID: d.ID, Name: d.Name}
	}
	return core.Variable{
		ID:        r.ID,
		Name:      r.Name,
		ShortName: r.ShortName,
		Type:      r.Type,
		Init:      nanIfNull(r.Init),
		Rate:      nanIfNull(r.Rate),
		Unit:      r.Unit,
		Math:      r.Math,
		Dependent: deps,
		Plots:     r.Plots,
		Component: r.Component,
		Leaves:    r.Leaves,
	}
}

type componentRecord struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Cellml    string   `json:"cellml"`
	Variables []string `json:"variables"`
	Code      string   `json:"code"`
	Leaves    []string `json:"leaves"`
}

func (r componentRecord) toCore() core.Component {
	return core.Component{
		ID:        r.ID,
		Name:      r.Name,
		Cellml:    r.Cellml,
		Variables: r.Variables,
		Code:      r.Code,
		Leaves:    r.Leaves,
	}
}

type cellmlRecord struct {
	ID         string   `json:"id"`
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	ArticleRef string   `json:"article_ref"`
	Abstract   string   `json:"abstract"`
	Workspace  string   `json:"workspace"`
	WorkingDir string   `json:"working_dir"`
	File       string   `json:"cellml"`
	Images     []string `json:"images"`
	Sedmls     []string `json:"sedml"`
	Leaves     []string `json:"leaves"`
}

func (r cellmlRecord) toCore() core.Cellml {
	return core.Cellml{
		ID:         r.ID,
		URL:        r.URL,
		Title:      r.Title,
		ArticleRef: r.ArticleRef,
		Abstract:   r.Abstract,
		Workspace:  r.Workspace,
		WorkingDir: r.WorkingDir,
		File:       r.File,
		Images:     r.Images,
		Sedmls:     r.Sedmls,
		Leaves:     r.Leaves,
	}
}

type seriesRecord struct {
	X string `json:"x"`
	Y string `json:"y"`
}

type outputRecord struct {
	ID     string         `json:"id"`
	Series []seriesRecord `json:"series"`
}

type sedmlRecord struct {
	ID        string              `json:"id"`
	URL       string              `json:"url"`
	Workspace string              `json:"workspace"`
	Cellml    string              `json:"cellml"`
	Variables map[string]*float64 `json:"variables"`
	Outputs   []outputRecord      `json:"outputs"`
}

func (r sedmlRecord) toCore() core.Sedml {
	vars := make(map[string]float64, len(r.Variables))
	for id, init := range r.Variables {
		vars[id] = nanIfNull(init)
	}
	outputs := make([]core.Output, len(r.Outputs))
	for i, o := range r.Outputs {
		series := make([]core.Series, len(o.Series))
		for j, s := range o.Series {
			series[j] = core.Series{X: s.X, Y: s.Y}
		}
		outputs[i] = core.Output{ID: o.ID, Series: series}
	}
	return core.Sedml{
		ID:        r.ID,
		URL:       r.URL,
		Workspace: r.Workspace,
		Cellml:    r.Cellml,
		Variables: vars,
		Outputs:   outputs,
	}
}

type workspaceRecord struct {
	URL       string   `json:"url"`
	Exposures []string `json:"exposures"`
}

func (r workspaceRecord) toCore() core.Workspace {
	return core.Workspace{URL: r.URL, Exposures: r.Exposures}
}

type imageRecord struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Title  string `json:"title"`
	Cellml string `json:"cellml"`
}

func (r imageRecord) toCore() core.Image {
	return core.Image{ID: r.ID, Path: r.Path, Title: r.Title, Cellml: r.Cellml}
}

type unitRecord struct {
	ID    string   `json:"id"`
	Names []string `json:"name"`
	Text  string   `json:"text"`
}

func (r unitRecord) toCore() core.Unit {
	return core.Unit{ID: r.ID, Names: r.Names, Text: r.Text}
}

type mathRecord struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

func (r mathRecord) toCore() core.Math {
	return core.Math{ID: r.ID, Source: r.Source}
}

type clustersRecord struct {
	Cluster map[string][]string `json:"cluster"`
}

// indexRecord is one entity's embedding index. Classes map class ids to
// class names, one object per id.
type indexRecord struct {
	IDs     []string                     `json:"ids"`
	Classes []map[string]string          `json:"classes"`
	Vectors map[core.Variant][][]float32 `json:"vectors"`
	Texts   map[core.Variant][]string    `json:"texts"`
}

func (r indexRecord) toIndex(entity core.EntityType) (*index.Index, error) {
	var classes []core.ClassSet
	if r.Classes != nil {
		classes = make([]core.ClassSet, len(r.Classes))
		for i, names := range r.Classes {
			set := make(core.ClassSet, len(names))
			for id, name := range names {
				set[id] = core.Class{ID: id, Name: name}
			}
			classes[i] = set
		}
	}
	for variant := range r.Vectors {
		if err := core.ValidateVariant(variant); err != nil {
			return nil, err
		}
	}
	return index.New(index.Data{
		Entity:  entity,
		IDs:     r.IDs,
		Classes: classes,
		Vectors: r.Vectors,
		Texts:   r.Texts,
	})
}
