// Package mock provides test doubles for the ai interfaces.
//
//	mockProvider := mock.NewMockProvider()
//	vec, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	mockEmbedder := mock.NewMockEmbedder().
//	    WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
//	        return []float32{1, 0, 0}, nil
//	    })
//
// MockEmbedder returns deterministic unit vectors derived from a hash of the
// text when no function is injected.
package mock
