package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_Exists(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "workspace", "hh", "figs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "workspace", "hh", "figs", "a.png"), []byte("png"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(t.TempDir(), "outside.png"), []byte("png"), 0644))

	store := Local{Root: root}
	ctx := context.Background()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "file", path: "workspace/hh/figs/a.png", want: true},
		{name: "leading slash", path: "/workspace/hh/figs/a.png", want: true},
		{name: "missing file", path: "workspace/hh/figs/b.png", want: false},
		{name: "directory", path: "workspace/hh", want: false},
		{name: "empty", path: "", want: false},
		{name: "escape attempt", path: "../outside.png", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.Exists(ctx, tt.path))
		})
	}
}

type countingStore struct {
	calls   int
	present map[string]bool
}

func (s *countingStore) Exists(_ context.Context, name string) bool {
	s.calls++
	return s.present[name]
}

func TestCached_Exists(t *testing.T) {
	inner := &countingStore{present: map[string]bool{"a.png": true}}
	cached, err := NewCached(inner, 8)
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, cached.Exists(ctx, "a.png"))
	assert.True(t, cached.Exists(ctx, "a.png"))
	assert.False(t, cached.Exists(ctx, "b.png"))
	assert.False(t, cached.Exists(ctx, "b.png"))
	assert.Equal(t, 2, inner.calls)
}

func TestNone(t *testing.T) {
	assert.False(t, None{}.Exists(context.Background(), "a.png"))
}
