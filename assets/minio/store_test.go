package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

type fakeClient struct {
	objects map[string]bool
	err     error
	keys    []string
}

func (f *fakeClient) StatObject(_ context.Context, bucket, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	f.keys = append(f.keys, bucket+"/"+key)
	if f.err != nil {
		return minio.ObjectInfo{}, f.err
	}
	if f.objects[key] {
		return minio.ObjectInfo{Key: key, Size: 10}, nil
	}
	return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Key: key}
}

func TestStore_Exists(t *testing.T) {
	client := &fakeClient{objects: map[string]bool{"pmr/workspace/hh/a.png": true}}
	store := newStore(client, "bucket", "pmr")
	ctx := context.Background()

	assert.True(t, store.Exists(ctx, "workspace/hh/a.png"))
	assert.False(t, store.Exists(ctx, "workspace/hh/b.png"))
	assert.False(t, store.Exists(ctx, ""))
	assert.True(t, store.Exists(ctx, "/workspace/hh/../hh/a.png"))
	assert.Equal(t, "bucket/pmr/workspace/hh/a.png", client.keys[0])
}

func TestStore_ExistsOnError(t *testing.T) {
	store := newStore(&fakeClient{err: errors.New("connection refused")}, "bucket", "")
	assert.False(t, store.Exists(context.Background(), "a.png"))
}

func TestNew(t *testing.T) {
	store, err := New(Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "b"})
	assert.NoError(t, err)
	assert.NotNil(t, store)
}
