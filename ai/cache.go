package ai

import (
	"context"
	"slices"

	"github.com/go-crypt/x/blake2b"
	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey [16]byte

// CachedEmbedder memoizes single-text embeddings in a bounded LRU.
// Batch calls are passed through untouched.
type CachedEmbedder struct {
	next  Embedder
	cache *lru.Cache[cacheKey, []float32]
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps next with an LRU holding up to size embeddings.
// A size below one returns next unchanged.
func NewCachedEmbedder(next Embedder, size int) (Embedder, error) {
	if size < 1 {
		return next, nil
	}
	cache, err := lru.New[cacheKey, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{next: next, cache: cache}, nil
}

// EmbedText returns the cached vector for text or computes and stores it.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	key := keyOf(text)
	if v, ok := c.cache.Get(key); ok {
		return slices.Clone(v), nil
	}
	v, err := c.next.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, slices.Clone(v))
	return v, nil
}

// EmbedTexts delegates to the wrapped embedder.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return c.next.EmbedTexts(ctx, texts)
}

// Len reports the number of cached embeddings.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

func keyOf(text string) cacheKey {
	var key cacheKey
	h, _ := blake2b.New(len(key), nil)
	h.Write([]byte(text))
	copy(key[:], h.Sum(nil))
	return key
}
