package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// localStorage stores payloads as files under a base directory
type localStorage struct {
	basePath   string
	publicPath string
}

// NewLocalStorage creates a new localStorage instance rooted at basePath.
// publicPath is the URL prefix the directory is served under.
func NewLocalStorage(basePath, publicPath string) (*localStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &localStorage{
		basePath:   basePath,
		publicPath: "/" + strings.Trim(publicPath, "/"),
	}, nil
}

// Name returns the backend name
func (s *localStorage) Name() string {
	return BackendFilesystem
}

// BasePath returns the directory payloads are written to
func (s *localStorage) BasePath() string {
	return s.basePath
}

// resolve maps a key to a path under the base directory.
// Keys that would escape the base directory are rejected.
func (s *localStorage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.basePath, clean), nil
}

// Save writes the payload under key, replacing any previous file
func (s *localStorage) Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) (err error) {
	defer observe(BackendFilesystem, "save", time.Now(), &err)

	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write to a temp file first so readers never see a partial payload
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, body); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}

// Open opens the payload stored under key.
// The returned reader is an *os.File and supports seeking.
func (s *localStorage) Open(ctx context.Context, key string) (rc io.ReadCloser, err error) {
	defer observe(BackendFilesystem, "open", time.Now(), &err)

	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes the payload stored under key
func (s *localStorage) Delete(ctx context.Context, key string) (err error) {
	defer observe(BackendFilesystem, "delete", time.Now(), &err)

	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// PublicURL returns the static URL the payload is served under
func (s *localStorage) PublicURL(key string) string {
	return s.publicPath + "/" + strings.TrimPrefix(key, "/")
}

// List returns every stored payload. Temp files of in-flight writes are skipped.
func (s *localStorage) List(ctx context.Context) (objects []Object, err error) {
	defer observe(BackendFilesystem, "list", time.Now(), &err)

	err = filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}

		objects = append(objects, Object{
			Key:     filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list media directory: %w", err)
	}

	return objects, nil
}

// Health checks that the media directory is writable
func (s *localStorage) Health(ctx context.Context) error {
	testFile := filepath.Join(s.basePath, ".health_check")
	if err := os.WriteFile(testFile, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("media directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	return nil
}
