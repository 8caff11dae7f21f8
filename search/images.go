package search

import (
	"context"
	"path"

	"github.com/poiesic/casbert/core"
)

// SimilarCellmls returns the other models in the cluster of the model that
// owns variable varID, in stored order. Unclustered models have none.
func (s *Searcher) SimilarCellmls(varID string) []string {
	v, ok := s.snapshot.Variables().Get(varID)
	if !ok {
		s.logger.Debug("variable not found", "id", varID, "err", core.ErrNotFound)
		return []string{}
	}
	owner, _ := s.ownerModel(v)
	return s.similarModels(owner)
}

func (s *Searcher) similarModels(cellmlID string) []string {
	if cellmlID == "" {
		return []string{}
	}
	return s.snapshot.Clusters().Similar(cellmlID)
}

// EntityImages returns the images of model cellmlID that exist in the asset
// store. When there are none, the images of its similar models are returned
// instead, one entry per URL with the citations of every model it came from.
func (s *Searcher) EntityImages(ctx context.Context, cellmlID string) []ImageRef {
	images := s.modelImages(ctx, cellmlID)
	if len(images) > 0 {
		return images
	}

	byURL := make(map[string]int)
	for _, other := range s.similarModels(cellmlID) {
		for _, img := range s.modelImages(ctx, other) {
			if i, ok := byURL[img.URL]; ok {
				images[i].Meta = images[i].Meta.union(img.Meta)
				continue
			}
			byURL[img.URL] = len(images)
			images = append(images, img)
		}
	}
	return images
}

// modelImages returns the images attached to model cellmlID that exist in
// the asset store. Only the first exposure of the workspace is cited.
func (s *Searcher) modelImages(ctx context.Context, cellmlID string) []ImageRef {
	out := []ImageRef{}
	m, ok := s.snapshot.Cellmls().Get(cellmlID)
	if !ok {
		if cellmlID != "" {
			s.logger.Debug("model not found", "id", cellmlID, "err", core.ErrNotFound)
		}
		return out
	}

	meta := ImageMeta{
		Cellml:    []string{s.url(m.URL)},
		Workspace: []string{s.url(m.Workspace)},
		Exposure:  []string{},
	}
	if exposures := s.exposures(m.Workspace); len(exposures) > 0 {
		meta.Exposure = []string{s.url(exposures[0])}
	}

	dir := path.Dir(m.Path())
	for _, id := range m.Images {
		img, ok := s.snapshot.Images().Get(id)
		if !ok {
			s.logger.Debug("image not found", "id", id, "model", m.ID, "err", core.ErrNotFound)
			continue
		}
		asset := path.Join(dir, img.Path)
		if !s.assets.Exists(ctx, asset) {
			s.logger.Debug("image asset missing", "id", id, "asset", asset)
			continue
		}
		out = append(out, ImageRef{
			URL:   s.url(rawFileURL(m.Workspace, img.Path)),
			Title: img.Title,
			Meta:  meta.clone(),
		})
	}
	return out
}
