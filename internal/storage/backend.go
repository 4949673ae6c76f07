package storage

import (
	"context"
	"io"

	"github.com/djnacci/backend/internal/config"
)

// Backend is implemented by every blob storage backend
type Backend interface {
	Name() string
	Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
	List(ctx context.Context) ([]Object, error)
	Health(ctx context.Context) error
}

// FromConfig builds the backend selected by MEDIA_STORAGE.
// Database mode keeps payloads inline and returns a nil Backend.
func FromConfig(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Media.Storage {
	case config.StorageFilesystem:
		local, err := NewLocalStorage(cfg.Media.BasePath, cfg.Media.PublicPath)
		if err != nil {
			return nil, err
		}
		return local, nil
	case config.StorageS3:
		s3Backend, err := NewS3Storage(ctx, S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return s3Backend, nil
	default:
		return nil, nil
	}
}
