package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/djnacci/backend/internal/metrics"
	"github.com/djnacci/backend/internal/storage"
	"go.uber.org/zap"
)

// FilePathLister is the interface that wraps the lookup of referenced storage keys
type FilePathLister interface {
	// Method ListFilePaths return the storage keys referenced by any media item.
	ListFilePaths(ctx context.Context) (map[string]struct{}, error)
}

// SweepableStorage is the interface that wraps methods the orphan sweeper needs from a storage backend
type SweepableStorage interface {
	// Method Name return the backend name used in logs and metrics.
	Name() string
	// Method List return every stored object.
	List(ctx context.Context) ([]storage.Object, error)
	// Method Delete remove the object stored under "key".
	Delete(ctx context.Context, key string) error
}

// SweepResult summarizes one sweep run
type SweepResult struct {
	Scanned int
	Removed int
	Failed  int
}

type orphanSweeper struct {
	repo    FilePathLister
	storage SweepableStorage
	grace   time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewOrphanSweeper creates a sweeper that removes stored files no media item references.
// Files younger than grace are kept, so uploads whose row is still being written survive.
func NewOrphanSweeper(repo FilePathLister, storage SweepableStorage, grace time.Duration, logger *zap.Logger) *orphanSweeper {
	return &orphanSweeper{
		repo:    repo,
		storage: storage,
		grace:   grace,
		logger:  logger,
		now:     time.Now,
	}
}

// Sweep runs one pass over the storage backend.
//
// Only keys shaped like storage.GenerateKey output are considered; foreign
// files sharing the bucket or directory are never counted or removed.
// Objects are listed before the referenced keys are read, so a file saved
// and referenced in between is never taken for an orphan.
func (s *orphanSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	objects, err := s.storage.List(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list stored files: %w", err)
	}

	referenced, err := s.repo.ListFilePaths(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list referenced files: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if !storage.IsGeneratedKey(obj.Key) {
			continue
		}

		result.Scanned++
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}

		if err := s.storage.Delete(ctx, obj.Key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			result.Failed++
			s.logger.Warn("failed to remove orphaned file",
				zap.String("backend", s.storage.Name()),
				zap.String("key", obj.Key),
				zap.Error(err),
			)
			continue
		}

		result.Removed++
		metrics.OrphansRemovedTotal.Inc()
		s.logger.Debug("removed orphaned file", zap.String("key", obj.Key))
	}

	s.logger.Info("orphan sweep finished",
		zap.String("backend", s.storage.Name()),
		zap.Int("scanned", result.Scanned),
		zap.Int("removed", result.Removed),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}
