package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "db")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	_, err := OpenBackend(tmpFile, false)
	assert.Error(t, err)
}

func TestOpenBackend_ReadOnlyMissing(t *testing.T) {
	_, err := OpenBackend(filepath.Join(t.TempDir(), "missing"), false, WithReadOnly())
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestBackend_BatchScanCount(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithBatch(func(wb *badger.WriteBatch) error {
		for _, id := range []string{"b", "a", "c"} {
			if err := wb.Set(makeRecordKey(unitPrefix, id), []byte(id)); err != nil {
				return err
			}
		}
		return wb.Set(makeRecordKey(mathPrefix, "z"), []byte("z"))
	})
	require.NoError(t, err)

	var seen []string
	err = backend.Scan(context.Background(), makePrefix(unitPrefix), func(key, val []byte) error {
		seen = append(seen, string(val))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen, "scan is in key order and limited to the prefix")

	n, err := backend.Count(makePrefix(unitPrefix))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBackend_ScanHonorsContext(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.WithBatch(func(wb *badger.WriteBatch) error {
		return wb.Set(makeRecordKey(unitPrefix, "a"), []byte("a"))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = backend.Scan(ctx, makePrefix(unitPrefix), func(key, val []byte) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMakeRecordKey(t *testing.T) {
	assert.Equal(t, []byte("var:v1"), makeRecordKey(variablePrefix, "v1"))
	assert.Equal(t, []byte("idx:cellml"), makeIndexKey("cellml"))
	assert.Equal(t, []byte("cml:"), makePrefix(cellmlPrefix))
}
