// Package storage persists uploaded media behind a FileStore.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"recipebox/internal/config"

	"github.com/google/uuid"
)

// Object key namespaces.
const (
	KindPost   = "post"
	KindAvatar = "avatar"
)

// FileStore stores media objects by key and resolves their public URL.
type FileStore interface {
	Save(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewFromConfig builds the store selected by STORAGE_BACKEND.
func NewFromConfig(cfg *config.Config) (FileStore, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		return NewS3Store(cfg.S3Bucket, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// ObjectKey returns a fresh key such as "uploads/post/<uuid>.jpg".
func ObjectKey(kind, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("uploads/%s/%s.%s", kind, uuid.NewString(), ext)
}
