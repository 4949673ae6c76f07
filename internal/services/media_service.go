package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/djnacci/backend/internal/metrics"
	"github.com/djnacci/backend/internal/models"
	"github.com/djnacci/backend/internal/slideshow"
	"github.com/djnacci/backend/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxFilesPerUpload is the largest batch accepted by Upload
const MaxFilesPerUpload = 20

// FileURLPrefix is the byte-serving endpoint of items whose bytes are served by the API
const FileURLPrefix = "/api/media/file/"

const octetStream = "application/octet-stream"

// MediaRepository is the interface that wraps methods for media_items table data access
type MediaRepository interface {
	// Method GetBySection retrieve all media items of a section ordered by position.
	//
	// Items are returned without their byte payload. An unknown section yields an empty slice.
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	GetBySection(ctx context.Context, section string) ([]models.MediaItem, error)
	// Method GetByID retrieve a media item by its ID.
	//
	// If the item does not exist, models.ErrMediaItemNotFound is returned.
	GetByID(ctx context.Context, id string) (*models.MediaItem, error)
	// Method GetFile retrieve the payload location of a media item: inline bytes or a storage key.
	//
	// Please reference GetByID method for information about error values.
	GetFile(ctx context.Context, id string) (*models.MediaFile, error)
	// Method Create insert a media item together with its payload.
	//
	// "item" parameter must carry a unique ID and either FileData or FilePath (or neither for external URLs).
	Create(ctx context.Context, item *models.NewMediaItem) error
	// Method Update apply a partial update to a media item.
	//
	// Only non-nil fields of "req" are written. If the item does not exist, models.ErrMediaItemNotFound is returned.
	Update(ctx context.Context, id string, req *models.UpdateMediaItemRequest) error
	// Method Delete remove a media item and return the storage key of its payload.
	//
	// The returned key is empty when the payload was stored inline.
	// If the item does not exist, models.ErrMediaItemNotFound is returned.
	Delete(ctx context.Context, id string) (string, error)
	// Method NextPosition return the position an item appended to "section" should get.
	NextPosition(ctx context.Context, section string) (int, error)
	// Method Reorder rewrite positions of "section" so that ids[i] gets position i.
	//
	// All updates run in one transaction. Ids outside the section are ignored.
	Reorder(ctx context.Context, section string, ids []string) error
}

// BlobStorage is the interface that wraps methods for media payloads stored outside the database
type BlobStorage interface {
	// Method Name return the backend name used in logs and metrics.
	Name() string
	// Method Save store "size" bytes read from "body" under "key", replacing any previous object.
	Save(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Method Open return a reader over the object stored under "key".
	//
	// storage.ErrNotFound is returned when no object exists. The caller must close the reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Method Delete remove the object stored under "key".
	//
	// storage.ErrNotFound is returned when no object exists.
	Delete(ctx context.Context, key string) error
	// Method PublicURL return the URL the object is directly reachable at,
	// or an empty string when bytes must be proxied through the API.
	PublicURL(key string) string
}

// ImageConverter is the interface that wraps image re-encoding
type ImageConverter interface {
	// Method NeedsConversion report whether images of "mimeType" must be re-encoded before storing.
	NeedsConversion(mimeType string) bool
	// Method ConvertToJPEG decode "data" of "mimeType" and encode it as baseline JPEG.
	ConvertToJPEG(data []byte, mimeType string) ([]byte, error)
}

type mediaService struct {
	repo      MediaRepository
	storage   BlobStorage
	converter ImageConverter
	locks     *sectionLocks
	logger    *zap.Logger
}

// NewMediaService creates a new media service.
//
// A nil storage keeps payload bytes inline in the database.
func NewMediaService(repo MediaRepository, storage BlobStorage, converter ImageConverter, logger *zap.Logger) *mediaService {
	return &mediaService{
		repo:      repo,
		storage:   storage,
		converter: converter,
		locks:     newSectionLocks(),
		logger:    logger,
	}
}

type preparedFile struct {
	filename  string
	mimeType  string
	mediaType models.MediaType
	data      []byte
}

// Upload creates one media item per file in the given section.
//
// All files are classified and converted first; a conversion failure aborts
// the call with nothing persisted. Files are then stored one by one, and a
// failure there returns the items created so far together with the error.
func (s *mediaService) Upload(ctx context.Context, section string, files []models.UploadedFile) ([]models.MediaItem, error) {
	section = strings.TrimSpace(section)
	if section == "" {
		return nil, ErrSectionRequired
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > MaxFilesPerUpload {
		return nil, fmt.Errorf("%w: at most %d files per upload", ErrTooManyFiles, MaxFilesPerUpload)
	}

	prepared := make([]preparedFile, 0, len(files))
	for _, file := range files {
		p, err := s.prepare(file)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}

	unlock := s.locks.Lock(section)
	defer unlock()

	position, err := s.repo.NextPosition(ctx, section)
	if err != nil {
		s.logger.Error("failed to get next position", zap.String("section", section), zap.Error(err))
		return nil, fmt.Errorf("failed to get next position: %w", err)
	}

	created := make([]models.MediaItem, 0, len(prepared))
	for _, p := range prepared {
		item, err := s.persist(ctx, section, position, p)
		metrics.RecordUpload(string(p.mediaType), metrics.StatusLabel(err), int64(len(p.data)))
		if err != nil {
			s.logger.Error("failed to persist uploaded file",
				zap.String("section", section),
				zap.String("filename", p.filename),
				zap.Int("persisted", len(created)),
				zap.Error(err),
			)
			return created, err
		}
		created = append(created, *item)
		position++
	}

	return created, nil
}

// prepare classifies a file and converts unsupported image encodings
func (s *mediaService) prepare(file models.UploadedFile) (preparedFile, error) {
	mimeType := normalizeMimeType(file.MimeType)
	if mimeType == "" || mimeType == octetStream {
		mimeType = normalizeMimeType(mimetype.Detect(file.Data).String())
	}

	p := preparedFile{
		filename:  file.Filename,
		mimeType:  mimeType,
		mediaType: models.MediaTypeImage,
		data:      file.Data,
	}

	if strings.HasPrefix(mimeType, "video/") {
		p.mediaType = models.MediaTypeVideo
		return p, nil
	}

	if s.converter == nil || !s.converter.NeedsConversion(mimeType) {
		return p, nil
	}

	converted, err := s.converter.ConvertToJPEG(file.Data, mimeType)
	metrics.RecordConversion(mimeType, metrics.StatusLabel(err))
	if err != nil {
		s.logger.Error("failed to convert image",
			zap.String("filename", file.Filename),
			zap.String("mime_type", mimeType),
			zap.Error(err),
		)
		return preparedFile{}, fmt.Errorf("%w: %s: %w", ErrConversionFailed, file.Filename, err)
	}

	p.data = converted
	p.mimeType = "image/jpeg"
	return p, nil
}

// persist stores the payload and inserts the metadata row
func (s *mediaService) persist(ctx context.Context, section string, position int, p preparedFile) (*models.MediaItem, error) {
	id := uuid.New().String()
	title := p.filename
	startTime := models.DefaultVideoStartTime
	endTime := models.DefaultVideoEndTime

	item := &models.NewMediaItem{
		MediaItem: models.MediaItem{
			ID:             id,
			Section:        section,
			Type:           p.mediaType,
			URL:            FileURLPrefix + id,
			Title:          &title,
			Duration:       models.DefaultDuration,
			VideoStartTime: &startTime,
			VideoEndTime:   &endTime,
			Position:       position,
			MimeType:       p.mimeType,
		},
	}

	if s.storage == nil {
		item.FileData = p.data
		if item.FileData == nil {
			item.FileData = []byte{}
		}
	} else {
		key := storage.GenerateKey(section, storage.InferExtension(p.mimeType, p.filename))
		if err := s.storage.Save(ctx, key, bytes.NewReader(p.data), int64(len(p.data)), p.mimeType); err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", p.filename, err)
		}
		item.FilePath = key
		if url := s.storage.PublicURL(key); url != "" {
			item.URL = url
		}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if item.FilePath != "" {
			s.deleteBlob(ctx, item.FilePath)
		}
		return nil, fmt.Errorf("failed to create media item for %s: %w", p.filename, err)
	}

	return &item.MediaItem, nil
}

// Create inserts a media item that carries no uploaded bytes, such as a YouTube link
func (s *mediaService) Create(ctx context.Context, req *models.CreateMediaItemRequest) (*models.MediaItem, error) {
	req.Section = strings.TrimSpace(req.Section)
	req.URL = strings.TrimSpace(req.URL)
	if req.Section == "" {
		return nil, ErrSectionRequired
	}
	if err := validateMediaType(req.Type); err != nil {
		return nil, err
	}
	if req.URL == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidMediaItem)
	}
	if err := validateTiming(req.Duration, req.VideoStartTime, req.VideoEndTime, req.Position); err != nil {
		return nil, err
	}

	item := &models.NewMediaItem{
		MediaItem: models.MediaItem{
			ID:             uuid.New().String(),
			Section:        req.Section,
			Type:           req.Type,
			URL:            req.URL,
			Title:          req.Title,
			Duration:       intOr(req.Duration, models.DefaultDuration),
		},
	}
	start := intOr(req.VideoStartTime, models.DefaultVideoStartTime)
	end := intOr(req.VideoEndTime, models.DefaultVideoEndTime)
	item.VideoStartTime = &start
	item.VideoEndTime = &end

	unlock := s.locks.Lock(req.Section)
	defer unlock()

	if req.Position != nil {
		item.Position = *req.Position
	} else {
		next, err := s.repo.NextPosition(ctx, req.Section)
		if err != nil {
			s.logger.Error("failed to get next position", zap.String("section", req.Section), zap.Error(err))
			return nil, fmt.Errorf("failed to get next position: %w", err)
		}
		item.Position = next
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("failed to create media item", zap.Error(err))
		return nil, fmt.Errorf("failed to create media item: %w", err)
	}

	return &item.MediaItem, nil
}

// GetBySection retrieves the items of a section ordered by position
func (s *mediaService) GetBySection(ctx context.Context, section string) ([]models.MediaItem, error) {
	if strings.TrimSpace(section) == "" {
		return nil, ErrSectionRequired
	}

	items, err := s.repo.GetBySection(ctx, section)
	if err != nil {
		s.logger.Error("failed to get media items", zap.String("section", section), zap.Error(err))
		return nil, fmt.Errorf("failed to get media items: %w", err)
	}

	return items, nil
}

// Playlist retrieves the items of a section with the time each one stays on screen
func (s *mediaService) Playlist(ctx context.Context, section string) ([]models.PlaylistEntry, error) {
	items, err := s.GetBySection(ctx, section)
	if err != nil {
		return nil, err
	}

	entries := make([]models.PlaylistEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, models.PlaylistEntry{
			MediaItem: item,
			DisplayMs: slideshow.Duration(item).Milliseconds(),
		})
	}

	return entries, nil
}

// Update applies a partial update and returns the resulting item
func (s *mediaService) Update(ctx context.Context, id string, req *models.UpdateMediaItemRequest) (*models.MediaItem, error) {
	if req.IsEmpty() {
		return s.getByID(ctx, id)
	}

	if req.Section != nil {
		section := strings.TrimSpace(*req.Section)
		if section == "" {
			return nil, ErrSectionRequired
		}
		req.Section = &section
	}
	if req.Type != nil {
		if err := validateMediaType(*req.Type); err != nil {
			return nil, err
		}
	}
	if req.URL != nil && strings.TrimSpace(*req.URL) == "" {
		return nil, fmt.Errorf("%w: url must not be empty", ErrInvalidMediaItem)
	}
	if err := validateTiming(req.Duration, req.VideoStartTime, req.VideoEndTime, req.Position); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, req); err != nil {
		if errors.Is(err, models.ErrMediaItemNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update media item", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update media item: %w", err)
	}

	return s.getByID(ctx, id)
}

func (s *mediaService) getByID(ctx context.Context, id string) (*models.MediaItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrMediaItemNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get media item", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get media item: %w", err)
	}
	return item, nil
}

// Delete removes a media item and its stored payload.
// Deleting an unknown id succeeds.
func (s *mediaService) Delete(ctx context.Context, id string) error {
	filePath, err := s.repo.Delete(ctx, id)
	if errors.Is(err, models.ErrMediaItemNotFound) {
		return nil
	}
	if err != nil {
		s.logger.Error("failed to delete media item", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete media item: %w", err)
	}

	if filePath != "" {
		s.deleteBlob(ctx, filePath)
	}

	return nil
}

// deleteBlob removes a stored payload, logging failures
func (s *mediaService) deleteBlob(ctx context.Context, key string) {
	if s.storage == nil {
		s.logger.Warn("stored file left behind, no storage configured", zap.String("key", key))
		return
	}

	err := s.storage.Delete(ctx, key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("failed to delete stored file",
			zap.String("backend", s.storage.Name()),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Reorder rewrites the positions of a section to follow the given id order
func (s *mediaService) Reorder(ctx context.Context, req *models.ReorderMediaRequest) error {
	section := strings.TrimSpace(req.Section)
	if section == "" || len(req.IDs) == 0 {
		return ErrInvalidReorder
	}

	unlock := s.locks.Lock(section)
	defer unlock()

	if err := s.repo.Reorder(ctx, section, req.IDs); err != nil {
		s.logger.Error("failed to reorder media items", zap.String("section", section), zap.Error(err))
		return fmt.Errorf("failed to reorder media items: %w", err)
	}

	return nil
}

// OpenFile returns the payload of a media item.
// The caller must close the returned body.
func (s *mediaService) OpenFile(ctx context.Context, id string) (*models.FileContent, error) {
	file, err := s.repo.GetFile(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrMediaItemNotFound) {
			return nil, models.ErrMediaFileNotFound
		}
		s.logger.Error("failed to get media file", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get media file: %w", err)
	}

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = octetStream
	}

	switch {
	case file.Data != nil:
		return &models.FileContent{
			MimeType: mimeType,
			Body:     nopSeekCloser{bytes.NewReader(file.Data)},
		}, nil
	case file.FilePath != "" && s.storage != nil:
		body, err := s.storage.Open(ctx, file.FilePath)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, models.ErrMediaFileNotFound
		}
		if err != nil {
			s.logger.Error("failed to open stored file", zap.String("id", id), zap.String("key", file.FilePath), zap.Error(err))
			return nil, fmt.Errorf("failed to open stored file: %w", err)
		}
		return &models.FileContent{MimeType: mimeType, Body: body}, nil
	default:
		return nil, models.ErrMediaFileNotFound
	}
}

// nopSeekCloser keeps io.Seeker visible through the ReadCloser
type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

func validateMediaType(t models.MediaType) error {
	switch t {
	case models.MediaTypeImage, models.MediaTypeVideo, models.MediaTypeYouTube:
		return nil
	default:
		return fmt.Errorf("%w: type must be one of image, video, youtube", ErrInvalidMediaItem)
	}
}

func validateTiming(duration, start, end, position *int) error {
	if duration != nil && *duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidMediaItem)
	}
	if start != nil && *start < 0 {
		return fmt.Errorf("%w: videoStartTime must not be negative", ErrInvalidMediaItem)
	}
	if end != nil && *end < 0 {
		return fmt.Errorf("%w: videoEndTime must not be negative", ErrInvalidMediaItem)
	}
	if position != nil && *position < 0 {
		return fmt.Errorf("%w: position must not be negative", ErrInvalidMediaItem)
	}
	return nil
}

func normalizeMimeType(s string) string {
	if s == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(s); err == nil {
		return mediaType
	}
	s, _, _ = strings.Cut(s, ";")
	return strings.ToLower(strings.TrimSpace(s))
}

func intOr(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}
