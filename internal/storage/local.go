package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Local stores objects below a directory that the router serves statically.
type Local struct {
	root    string
	urlPath string
}

// NewLocal creates the upload directory when needed.
func NewLocal(root, urlPath string) (*Local, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: upload directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload directory: %w", err)
	}

	urlPath = "/" + strings.Trim(strings.TrimSpace(urlPath), "/")
	return &Local{root: root, urlPath: urlPath}, nil
}

func (l *Local) Name() string { return DriverLocal }

// Root returns the directory objects are written to.
func (l *Local) Root() string { return l.root }

// URLPath returns the route prefix objects are served under.
func (l *Local) URLPath() string { return l.urlPath }

// Put writes to a temporary file first so readers never see a partial object.
func (l *Local) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	target, err := l.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("storage: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close object: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod object: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("storage: commit object: %w", err)
	}
	return nil
}

func (l *Local) Open(_ context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	target, err := l.path(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}

	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrObjectNotFound
		}
		return nil, ObjectInfo{}, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, ObjectInfo{}, err
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return file, ObjectInfo{Key: key, Size: stat.Size(), ContentType: contentType}, nil
}

func (l *Local) Remove(_ context.Context, key string) error {
	target, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}

func (l *Local) URL(key string) string {
	return strings.TrimRight(l.urlPath, "/") + "/" + strings.TrimLeft(key, "/")
}

func (l *Local) path(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(cleaned)), nil
}
