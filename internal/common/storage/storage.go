package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
)

// ObjectStore persists uploaded blobs and returns a durable public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, r io.Reader) (string, error)
}

// FileStore keeps objects on local disk under a single directory and serves
// them from a static base URL.
type FileStore struct {
	dir     string
	baseURL string
}

func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, commonerrors.ErrUploadFailed.WithCause(err)
	}
	return &FileStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *FileStore) Put(ctx context.Context, key string, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", commonerrors.ErrUploadFailed.WithCause(err)
	}

	key = sanitizeKey(key)
	if key == "" {
		return "", commonerrors.ErrUploadFailed.WithCause(fmt.Errorf("empty object key"))
	}

	dest := filepath.Join(s.dir, key)
	tmp, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return "", commonerrors.ErrUploadFailed.WithCause(err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", commonerrors.ErrUploadFailed.WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return "", commonerrors.ErrUploadFailed.WithCause(err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", commonerrors.ErrUploadFailed.WithCause(err)
	}

	return s.baseURL + "/" + key, nil
}

func sanitizeKey(key string) string {
	key = filepath.Base(key)
	if key == "." || key == string(filepath.Separator) {
		return ""
	}
	return key
}
