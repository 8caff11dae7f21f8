package search

import (
	"context"
	"sync"

	"github.com/poiesic/casbert/core"
)

// SearchAll runs the five entity searches for q concurrently on the worker
// pool. If any search fails the first error is returned.
func (s *Searcher) SearchAll(ctx context.Context, q core.Query) (*AllResults, error) {
	if _, err := s.prepare(q); err != nil {
		return nil, err
	}

	var (
		all      AllResults
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	tasks := []func() error{
		func() (err error) {
			all.Variables, err = s.SearchVariables(ctx, q)
			return err
		},
		func() (err error) {
			all.Components, err = s.SearchComponents(ctx, q)
			return err
		},
		func() (err error) {
			all.Cellmls, err = s.SearchCellmls(ctx, q)
			return err
		},
		func() (err error) {
			all.Sedmls, err = s.SearchSedmls(ctx, q)
			return err
		},
		func() (err error) {
			all.Images, err = s.SearchImages(ctx, q)
			return err
		},
	}
	for _, task := range tasks {
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			if err := task(); err != nil {
				fail(err)
			}
		}); err != nil {
			wg.Done()
			fail(err)
		}
	}
	wg.Wait()

	if firstErr != nil {
		s.logger.Error("search failed", "query", q.Text, "err", firstErr)
		return nil, firstErr
	}
	return &all, nil
}
