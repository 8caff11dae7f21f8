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

// Package assets checks whether image files referenced by the catalog are
// present on the backing store.
package assets

import (
	"context"
	"os"
	"path"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Store reports whether an asset exists. Paths are slash separated and
// relative to the store root. Lookup failures count as absent.
type Store interface {
	Exists(ctx context.Context, name string) bool
}

// Local serves assets from a directory.
type Local struct {
	Root string
}

var _ Store = Local{}

// Exists reports whether name is a regular file under Root.
// Names cannot escape Root.
func (l Local) Exists(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	clean := path.Clean("/" + name)
	info, err := os.Stat(filepath.Join(l.Root, filepath.FromSlash(clean)))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// Cached memoizes the answers of another Store.
type Cached struct {
	next  Store
	cache *lru.Cache[string, bool]
}

// NewCached wraps next with an LRU of up to size answers.
func NewCached(next Store, size int) (*Cached, error) {
	cache, err := lru.New[string, bool](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: cache}, nil
}

// Exists answers from the cache or asks the wrapped store.
func (c *Cached) Exists(ctx context.Context, name string) bool {
	if ok, hit := c.cache.Get(name); hit {
		return ok
	}
	ok := c.next.Exists(ctx, name)
	c.cache.Add(name, ok)
	return ok
}

// None is a Store without assets.
type None struct{}

// Exists always returns false.
func (None) Exists(context.Context, string) bool { return false }
