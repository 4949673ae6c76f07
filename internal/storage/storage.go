// Package storage keeps media payloads outside the database,
// on the local filesystem or in an S3-compatible bucket.
package storage

import (
	"errors"
	"time"

	"github.com/djnacci/backend/internal/metrics"
)

// ErrNotFound is returned when no object is stored under a key
var ErrNotFound = errors.New("stored file not found")

// Backend names, also used as metrics labels
const (
	BackendFilesystem = "filesystem"
	BackendS3         = "s3"
)

// Object describes a stored payload
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// observe records a storage call; it is deferred with a pointer to the named error result
func observe(backend, operation string, start time.Time, errp *error) {
	err := *errp
	status := metrics.StatusLabel(err)
	if errors.Is(err, ErrNotFound) {
		status = "not_found"
	}
	metrics.RecordStorageOperation(backend, operation, status, time.Since(start).Seconds())
}
