// Package storage keeps uploaded media objects on local disk or in an S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/sunoy2004/yanc-cms-sub001/internal/config"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

var (
	// ErrObjectNotFound is returned when a key has no stored object.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrInvalidKey is returned for keys that are empty or escape the storage root.
	ErrInvalidKey = errors.New("storage: invalid object key")
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Storage is the backend media uploads are written to.
type Storage interface {
	Name() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverLocal:
		return NewLocal(cfg.UploadDir, cfg.UploadURLPath)
	case DriverS3:
		return NewMinio(ctx, MinioOptions{
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			PublicURL:    cfg.S3PublicURL,
			CreateBucket: cfg.S3CreateBucket,
		})
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}
}

// cleanKey normalises a slash separated key and rejects anything that could leave the root.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, `\`) || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return "", ErrInvalidKey
		}
	}
	return path.Clean(key), nil
}
