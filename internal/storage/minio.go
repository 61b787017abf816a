package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioOptions configures an S3 compatible backend.
type MinioOptions struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	PublicURL    string
	CreateBucket bool
}

// Minio stores objects in an S3 compatible bucket.
type Minio struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// "minio:9000" 或 "http(s)://minio:9000" 两种写法都接受
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	return raw, false, nil
}

// NewMinio connects to the bucket, creating it when opts.CreateBucket is set.
func NewMinio(ctx context.Context, opts MinioOptions) (*Minio, error) {
	if opts.AccessKey == "" || opts.SecretKey == "" || opts.Bucket == "" {
		return nil, errors.New("storage: s3 configuration incomplete")
	}

	endpoint, secure, err := normaliseEndpoint(opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("storage: s3 endpoint: %w", err)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: check bucket: %w", err)
	}
	if !exists {
		if !opts.CreateBucket {
			return nil, fmt.Errorf("storage: bucket does not exist: %s", opts.Bucket)
		}
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("storage: create bucket: %w", err)
		}
	}

	publicURL := strings.TrimRight(strings.TrimSpace(opts.PublicURL), "/")
	if publicURL == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, endpoint, opts.Bucket)
	}

	return &Minio{client: client, bucket: opts.Bucket, publicURL: publicURL}, nil
}

func (m *Minio) Name() string { return DriverS3 }

func (m *Minio) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if _, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("storage: put object: %w", err)
	}
	return nil
}

func (m *Minio) Open(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	key, err := cleanKey(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, ObjectInfo{}, mapMinioError(err)
	}
	return obj, ObjectInfo{Key: key, Size: stat.Size, ContentType: stat.ContentType}, nil
}

func (m *Minio) Remove(ctx context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return mapMinioError(err)
	}
	return nil
}

func (m *Minio) URL(key string) string {
	return m.publicURL + "/" + strings.TrimLeft(key, "/")
}

func mapMinioError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return ErrObjectNotFound
	}
	return fmt.Errorf("storage: %w", err)
}
