// Package minio checks image assets on MinIO and other S3-compatible object
// stores.
//
//	store, err := minio.New(minio.Config{
//	    Endpoint:  "localhost:9000",
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	    Bucket:    "pmr",
//	    Prefix:    "workspaces/",
//	})
package minio

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/poiesic/casbert/assets"
)

// Config describes the object store holding the workspace files.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Secure    bool
	Bucket    string
	Prefix    string
}

// statter is the part of *minio.Client the store needs.
type statter interface {
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// Store implements assets.Store on an S3-compatible bucket.
type Store struct {
	client statter
	bucket string
	prefix string
	logger *slog.Logger
}

var _ assets.Store = (*Store)(nil)

// New connects a client for cfg and returns a Store on it.
func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	return NewStore(client, cfg.Bucket, cfg.Prefix), nil
}

// NewStore creates a Store. rootPrefix is prepended to every asset path.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return newStore(client, bucket, rootPrefix)
}

func newStore(client statter, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
		logger: slog.Default().With("component", "minio-assets"),
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, strings.TrimPrefix(path.Clean("/"+name), "/"))
}

// Exists reports whether the object for name is in the bucket.
func (s *Store) Exists(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	key := s.key(name)
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true
	}
	errResp := minio.ToErrorResponse(err)
	if errResp.Code != "NoSuchKey" && errResp.Code != "NotFound" {
		s.logger.Warn("asset lookup failed", "bucket", s.bucket, "key", key, "err", err)
	}
	return false
}
