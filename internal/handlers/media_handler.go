package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/djnacci/backend/internal/models"
	"github.com/djnacci/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	multipartMemory  = 32 << 20
	fileCacheControl = "public, max-age=31536000, immutable"
)

// MediaService is the interface that wraps methods for media business logic
type MediaService interface {
	// Method Upload create one media item per file in "section".
	//
	// Unsupported image encodings are converted before anything is stored.
	// On a storage failure mid-batch the items created so far are returned together with the error.
	Upload(ctx context.Context, section string, files []models.UploadedFile) ([]models.MediaItem, error)
	// Method Create insert a media item without uploaded bytes, such as a YouTube link.
	//
	// A nil position appends the item to the end of its section.
	Create(ctx context.Context, req *models.CreateMediaItemRequest) (*models.MediaItem, error)
	// Method GetBySection retrieve the items of "section" ordered by position.
	GetBySection(ctx context.Context, section string) ([]models.MediaItem, error)
	// Method Playlist retrieve the items of "section" together with their on-screen time.
	Playlist(ctx context.Context, section string) ([]models.PlaylistEntry, error)
	// Method Update apply a partial update and return the resulting item.
	//
	// If the item does not exist, models.ErrMediaItemNotFound is returned.
	Update(ctx context.Context, id string, req *models.UpdateMediaItemRequest) (*models.MediaItem, error)
	// Method Delete remove a media item and its stored bytes. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
	// Method Reorder rewrite the positions of a section to follow the given id order.
	Reorder(ctx context.Context, req *models.ReorderMediaRequest) error
	// Method OpenFile return the bytes of a media item.
	//
	// If the item or its bytes do not exist, models.ErrMediaFileNotFound is returned.
	// The caller must close the returned body.
	OpenFile(ctx context.Context, id string) (*models.FileContent, error)
}

// MediaHandler handles media-related HTTP requests
type MediaHandler struct {
	BaseHandler
	service     MediaService
	authMw      func(http.Handler) http.Handler
	maxFileSize int64
}

// NewMediaHandler creates a new media handler.
// authMw guards every write route; maxFileSize limits each uploaded file.
func NewMediaHandler(svc MediaService, logger *zap.Logger, authMw func(http.Handler) http.Handler, maxFileSize int64) *MediaHandler {
	return &MediaHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     svc,
		authMw:      authMw,
		maxFileSize: maxFileSize,
	}
}

// RegisterRoutes registers all media handler routes
func (h *MediaHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/media", func(r chi.Router) {
		r.Get("/file/{id}", h.GetFile)
		r.Get("/{section}", h.GetBySection)
		r.Get("/{section}/playlist", h.GetPlaylist)

		r.Group(func(r chi.Router) {
			if h.authMw != nil {
				r.Use(h.authMw)
			}
			r.Post("/upload", h.Upload)
			r.Post("/reorder", h.Reorder)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// GetBySection handles GET /api/media/{section}
// @Summary List media of a section
// @Description Get the media items of a section ordered by position. Byte payloads are never included.
// @Tags media
// @Produce json
// @Param section path string true "Section (hero, about, gallery)"
// @Success 200 {array} models.MediaItem
// @Failure 500 {object} map[string]string
// @Router /api/media/{section} [get]
func (h *MediaHandler) GetBySection(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	items, err := h.service.GetBySection(r.Context(), section)
	if err != nil {
		if errors.Is(err, services.ErrSectionRequired) {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.RespondInternalError(w, r, "failed to get media items", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, items)
}

// GetPlaylist handles GET /api/media/{section}/playlist
// @Summary Get slideshow playlist of a section
// @Description Get the media items of a section with the milliseconds each one stays on screen
// @Tags media
// @Produce json
// @Param section path string true "Section"
// @Success 200 {array} models.PlaylistEntry
// @Failure 500 {object} map[string]string
// @Router /api/media/{section}/playlist [get]
func (h *MediaHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")

	entries, err := h.service.Playlist(r.Context(), section)
	if err != nil {
		if errors.Is(err, services.ErrSectionRequired) {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.RespondInternalError(w, r, "failed to get playlist", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, entries)
}

// GetFile handles GET /api/media/file/{id}
// @Summary Download media bytes
// @Description Serve the stored bytes of a media item. Range requests are supported.
// @Tags media
// @Produce application/octet-stream
// @Param id path string true "Media item ID"
// @Param Range header string false "Range"
// @Success 200 "File content"
// @Success 206 "Partial file content"
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/media/file/{id} [get]
func (h *MediaHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	content, err := h.service.OpenFile(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrMediaFileNotFound) {
			h.RespondError(w, http.StatusNotFound, "file not found")
			return
		}
		h.RespondInternalError(w, r, "failed to open file", err)
		return
	}
	defer content.Body.Close()

	w.Header().Set("Content-Type", content.MimeType)
	w.Header().Set("Cache-Control", fileCacheControl)

	if seeker, ok := content.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, id, time.Time{}, seeker)
		return
	}

	if _, err := io.Copy(w, content.Body); err != nil {
		h.Logger.Warn("failed to copy file to response", zap.String("id", id), zap.Error(err))
	}
}

// Upload handles POST /api/media/upload
// @Summary Upload media files
// @Description Upload 1 to 20 files into a section. HEIC, HEIF, WEBP, TIFF and AVIF images are stored as JPEG.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param section formData string true "Section"
// @Param files formData file true "Files to upload"
// @Success 200 {array} models.MediaItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 413 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/media/upload [post]
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.RespondError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		h.RespondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	section := strings.TrimSpace(r.FormValue("section"))
	if section == "" {
		h.RespondError(w, http.StatusBadRequest, services.ErrSectionRequired.Error())
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.RespondError(w, http.StatusBadRequest, services.ErrNoFiles.Error())
		return
	}
	if len(headers) > services.MaxFilesPerUpload {
		h.RespondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d files per upload", services.MaxFilesPerUpload))
		return
	}

	files := make([]models.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		if h.maxFileSize > 0 && fh.Size > h.maxFileSize {
			h.RespondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file %s exceeds the size limit", fh.Filename))
			return
		}

		data, err := readFormFile(fh)
		if err != nil {
			h.RespondInternalError(w, r, "failed to read uploaded file", err)
			return
		}

		files = append(files, models.UploadedFile{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	items, err := h.service.Upload(r.Context(), section, files)
	if err != nil {
		if status, ok := mediaClientErrorStatus(err); ok {
			h.RespondError(w, status, err.Error())
			return
		}
		if errors.Is(err, services.ErrConversionFailed) {
			h.RespondInternalError(w, r, "failed to convert image", err)
			return
		}
		if len(items) > 0 {
			h.Logger.Warn("upload aborted after storing some files", zap.Int("stored", len(items)))
		}
		h.RespondInternalError(w, r, "failed to upload files", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, items)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return data, nil
}

// Create handles POST /api/media
// @Summary Create media item
// @Description Insert a media item that references external content, such as a YouTube video
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateMediaItemRequest true "Media item"
// @Success 201 {object} models.MediaItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/media [post]
func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMediaItemRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	item, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if status, ok := mediaClientErrorStatus(err); ok {
			h.RespondError(w, status, err.Error())
			return
		}
		h.RespondInternalError(w, r, "failed to create media item", err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, item)
}

// Update handles PATCH /api/media/{id}
// @Summary Update media item
// @Description Partially update a media item. Omitted fields are left untouched.
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media item ID"
// @Param request body models.UpdateMediaItemRequest true "Fields to update"
// @Success 200 {object} models.MediaItem
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/media/{id} [patch]
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateMediaItemRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	item, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, models.ErrMediaItemNotFound) {
			h.RespondError(w, http.StatusNotFound, "media item not found")
			return
		}
		if status, ok := mediaClientErrorStatus(err); ok {
			h.RespondError(w, status, err.Error())
			return
		}
		h.RespondInternalError(w, r, "failed to update media item", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/media/{id}
// @Summary Delete media item
// @Description Delete a media item and its stored bytes. Deleting an unknown id succeeds.
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media item ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/media/{id} [delete]
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.RespondInternalError(w, r, "failed to delete media item", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// Reorder handles POST /api/media/reorder
// @Summary Reorder media of a section
// @Description Rewrite positions of a section to 0..n-1 following the given id order
// @Tags media
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ReorderMediaRequest true "Section and ordered ids"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/media/reorder [post]
func (h *MediaHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req models.ReorderMediaRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	if err := h.service.Reorder(r.Context(), &req); err != nil {
		if errors.Is(err, services.ErrInvalidReorder) {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.RespondInternalError(w, r, "failed to reorder media items", err)
		return
	}

	h.RespondJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// mediaClientErrorStatus maps validation errors of the media service to a client status
func mediaClientErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, services.ErrSectionRequired),
		errors.Is(err, services.ErrNoFiles),
		errors.Is(err, services.ErrTooManyFiles),
		errors.Is(err, services.ErrInvalidMediaItem):
		return http.StatusBadRequest, true
	default:
		return 0, false
	}
}
