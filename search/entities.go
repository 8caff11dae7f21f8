package search

import (
	"context"
	"path"

	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/index"
)

// SearchVariables returns the variables matching q with their component,
// model, plots, images, similar models and optionally their dependencies.
func (s *Searcher) SearchVariables(ctx context.Context, q core.Query) (*Result[VariableResult], error) {
	return resolve(ctx, s, s.variablePlan(q.IncludeDependencies), q)
}

// SearchComponents returns the components matching q.
func (s *Searcher) SearchComponents(ctx context.Context, q core.Query) (*Result[ComponentResult], error) {
	return resolve(ctx, s, s.componentPlan(), q)
}

// SearchCellmls returns the models matching q.
func (s *Searcher) SearchCellmls(ctx context.Context, q core.Query) (*Result[CellmlResult], error) {
	return resolve(ctx, s, s.cellmlPlan(), q)
}

// SearchSedmls returns the simulation experiments matching q.
func (s *Searcher) SearchSedmls(ctx context.Context, q core.Query) (*Result[SedmlResult], error) {
	return resolve(ctx, s, s.sedmlPlan(), q)
}

// SearchImages returns the images matching q.
func (s *Searcher) SearchImages(ctx context.Context, q core.Query) (*Result[ImageResult], error) {
	return resolve(ctx, s, s.imagePlan(), q)
}

func (s *Searcher) variablePlan(withDependencies bool) joinPlan[core.Variable, VariableResult] {
	hops := []hop[core.Variable, VariableResult]{
		func(_ context.Context, v *core.Variable, r *VariableResult) {
			_, comp := s.ownerModel(v)
			if comp == nil {
				return
			}
			r.Component = comp.Name
			r.CompLeaves = core.FilterLeaves(comp.Leaves)
		},
		func(_ context.Context, v *core.Variable, r *VariableResult) {
			owner, _ := s.ownerModel(v)
			r.ModelContext = s.modelContext(owner)
		},
		func(_ context.Context, v *core.Variable, r *VariableResult) {
			r.Sedmls = s.sedmlsOf(v)
		},
		func(ctx context.Context, v *core.Variable, r *VariableResult) {
			owner, _ := s.ownerModel(v)
			r.CellmlImages = s.EntityImages(ctx, owner)
		},
		func(_ context.Context, v *core.Variable, r *VariableResult) {
			owner, _ := s.ownerModel(v)
			r.SimilarCellmls = s.similarModels(owner)
		},
	}
	if withDependencies {
		hops = append(hops, func(_ context.Context, v *core.Variable, r *VariableResult) {
			r.Dependent = s.dependencies(v)
		})
	}

	return joinPlan[core.Variable, VariableResult]{
		entity: core.EntityVariable,
		lookup: s.snapshot.Variables().Get,
		base: func(m index.Match, v *core.Variable) VariableResult {
			return VariableResult{
				VariableSummary: s.summarize(v),
				ModelContext:    ModelContext{Exposures: []string{}},
				Score:           m.Score,
				Leaves:          core.FilterLeaves(v.Leaves),
				CompLeaves:      []string{},
			}
		},
		hops: hops,
		facets: func(r *VariableResult) facetSource {
			return facetSource{id: r.ID, classes: []core.ClassSet{r.Classes}}
		},
	}
}

func (s *Searcher) componentPlan() joinPlan[core.Component, ComponentResult] {
	return joinPlan[core.Component, ComponentResult]{
		entity: core.EntityComponent,
		lookup: s.snapshot.Components().Get,
		base: func(m index.Match, c *core.Component) ComponentResult {
			return ComponentResult{
				ID:      c.ID,
				Name:    c.Name,
				Score:   m.Score,
				Math:    []string{},
				Classes: s.classes(core.EntityComponent, c.ID),
			}
		},
		hops: []hop[core.Component, ComponentResult]{
			// Classes of every variable, maths of the first variable that has any.
			func(_ context.Context, c *core.Component, r *ComponentResult) {
				for _, id := range c.Variables {
					r.Classes = r.Classes.Merge(s.classes(core.EntityVariable, id))
					if len(r.Math) == 0 {
						r.Math = s.EntityMaths(id)
					}
				}
			},
			func(_ context.Context, c *core.Component, r *ComponentResult) {
				r.ModelContext = s.modelContext(c.Cellml)
			},
		},
		facets: func(r *ComponentResult) facetSource {
			return facetSource{id: r.ID, classes: []core.ClassSet{r.Classes}}
		},
	}
}

func (s *Searcher) cellmlPlan() joinPlan[core.Cellml, CellmlResult] {
	return joinPlan[core.Cellml, CellmlResult]{
		entity: core.EntityCellml,
		lookup: s.snapshot.Cellmls().Get,
		base: func(m index.Match, c *core.Cellml) CellmlResult {
			return CellmlResult{
				ID:        c.ID,
				URL:       s.url(c.URL),
				Title:     c.DisplayTitle(),
				Score:     m.Score,
				Workspace: s.url(c.Workspace),
				Abstract:  c.Abstract,
				Classes:   s.classes(core.EntityCellml, c.ID),
			}
		},
		hops: []hop[core.Cellml, CellmlResult]{
			func(_ context.Context, c *core.Cellml, r *CellmlResult) {
				r.Exposures = s.urls(s.exposures(c.Workspace))
			},
			func(ctx context.Context, c *core.Cellml, r *CellmlResult) {
				r.Images = s.modelImages(ctx, c.ID)
			},
			func(_ context.Context, c *core.Cellml, r *CellmlResult) {
				r.Sedmls = make([]SedmlPlots, 0, len(c.Sedmls))
				for _, id := range c.Sedmls {
					sedml, ok := s.snapshot.Sedmls().Get(id)
					if !ok {
						s.logger.Debug("sedml not found", "id", id, "model", c.ID, "err", core.ErrNotFound)
						continue
					}
					r.Sedmls = append(r.Sedmls, SedmlPlots{URL: s.url(sedml.URL), Plots: s.plots(sedml)})
				}
			},
		},
		facets: func(r *CellmlResult) facetSource {
			return facetSource{id: r.ID, classes: []core.ClassSet{r.Classes}}
		},
	}
}

func (s *Searcher) sedmlPlan() joinPlan[core.Sedml, SedmlResult] {
	return joinPlan[core.Sedml, SedmlResult]{
		entity: core.EntitySedml,
		lookup: s.snapshot.Sedmls().Get,
		base: func(m index.Match, sedml *core.Sedml) SedmlResult {
			return SedmlResult{
				ID:        sedml.ID,
				URL:       s.url(sedml.URL),
				Score:     m.Score,
				Workspace: s.url(sedml.Workspace),
				Classes:   s.classes(core.EntitySedml, sedml.ID),
			}
		},
		hops: []hop[core.Sedml, SedmlResult]{
			func(_ context.Context, sedml *core.Sedml, r *SedmlResult) {
				mc := s.modelContext(sedml.Cellml)
				r.CellmlURL = mc.CellmlURL
				r.CellmlTitle = mc.CellmlTitle
			},
			func(_ context.Context, sedml *core.Sedml, r *SedmlResult) {
				r.Plots = s.plots(sedml)
			},
			func(_ context.Context, sedml *core.Sedml, r *SedmlResult) {
				r.Exposures = s.urls(s.exposures(sedml.Workspace))
			},
		},
		// Plotted variables carry the classes, not the experiment.
		facets: func(r *SedmlResult) facetSource {
			src := facetSource{id: r.ID}
			for _, p := range r.Plots {
				for _, v := range p.Variables {
					src.classes = append(src.classes, v.Classes)
				}
			}
			return src
		},
	}
}

func (s *Searcher) imagePlan() joinPlan[core.Image, ImageResult] {
	return joinPlan[core.Image, ImageResult]{
		entity: core.EntityImage,
		lookup: s.snapshot.Images().Get,
		base: func(m index.Match, img *core.Image) ImageResult {
			return ImageResult{
				ID:        img.ID,
				Path:      img.Path,
				Title:     img.Title,
				Cellml:    img.Cellml,
				Score:     m.Score,
				Exposures: []string{},
				Classes:   s.classes(core.EntityImage, img.ID),
			}
		},
		hops: []hop[core.Image, ImageResult]{
			func(_ context.Context, img *core.Image, r *ImageResult) {
				m, ok := s.snapshot.Cellmls().Get(img.Cellml)
				if !ok {
					s.logger.Debug("model not found", "id", img.Cellml, "image", img.ID, "err", core.ErrNotFound)
					return
				}
				r.URL = s.url(rawFileURL(m.Workspace, img.Path))
				r.CellmlURL = s.url(m.URL)
				r.WorkspaceURL = s.url(m.Workspace)
				r.Exposures = s.urls(s.exposures(m.Workspace))
			},
		},
		facets: func(r *ImageResult) facetSource {
			return facetSource{id: r.ID, classes: []core.ClassSet{r.Classes}}
		},
	}
}

// rawFileURL is the address of file at the head revision of workspace.
func rawFileURL(workspace, file string) string {
	return path.Join(workspace, "rawfile", "HEAD", file)
}
