package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/anonto42/wingit/backend/pkg/config"
)

// Storage persists uploaded media and returns the URL clients use to fetch it.
type Storage interface {
	// Put stores content from the reader under key. size is -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)

	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}

// New picks the backend configured by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg.LocalDir, cfg.PublicURL)
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
			PublicURL:       cfg.PublicURL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}
