package storage

import (
	"context"
	"io"
)

// PutOptions describes upload options for object storage.
type PutOptions struct {
	ContentType string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStore abstracts object storage operations. Keys are opaque
// strings; a put to an existing key replaces the object silently, so
// callers must guarantee uniqueness through the key naming scheme.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts PutOptions) error
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, ObjectInfo, error)
	RemoveObject(ctx context.Context, bucket, key string) error
	// EnsureBucket verifies the bucket is reachable and accessible,
	// creating it when absent.
	EnsureBucket(ctx context.Context, bucket string) error
}
