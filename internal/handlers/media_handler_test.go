package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/djnacci/backend/internal/models"
	"github.com/djnacci/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockMediaService is a mock implementation of MediaService
type mockMediaService struct {
	items      []models.MediaItem
	item       *models.MediaItem
	playlist   []models.PlaylistEntry
	file       *models.FileContent
	err        error
	uploadedTo string
	uploaded   []models.UploadedFile
	createReq  *models.CreateMediaItemRequest
	updateReq  *models.UpdateMediaItemRequest
	reorderReq *models.ReorderMediaRequest
	deletedID  string
}

func (m *mockMediaService) Upload(ctx context.Context, section string, files []models.UploadedFile) ([]models.MediaItem, error) {
	m.uploadedTo = section
	m.uploaded = files
	return m.items, m.err
}

func (m *mockMediaService) Create(ctx context.Context, req *models.CreateMediaItemRequest) (*models.MediaItem, error) {
	m.createReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

func (m *mockMediaService) GetBySection(ctx context.Context, section string) ([]models.MediaItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockMediaService) Playlist(ctx context.Context, section string) ([]models.PlaylistEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.playlist, nil
}

func (m *mockMediaService) Update(ctx context.Context, id string, req *models.UpdateMediaItemRequest) (*models.MediaItem, error) {
	m.updateReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

func (m *mockMediaService) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return m.err
}

func (m *mockMediaService) Reorder(ctx context.Context, req *models.ReorderMediaRequest) error {
	m.reorderReq = req
	return m.err
}

func (m *mockMediaService) OpenFile(ctx context.Context, id string) (*models.FileContent, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.file, nil
}

// readSeekCloser wraps a bytes.Reader the way inline payloads are served
type readSeekCloser struct {
	*bytes.Reader
}

func (readSeekCloser) Close() error { return nil }

// denyAll stands in for the admin middleware
func denyAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
}

func setupMediaRouter(svc MediaService, authMw func(http.Handler) http.Handler, maxFileSize int64) chi.Router {
	h := NewMediaHandler(svc, zap.NewNop(), authMw, maxFileSize)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

type uploadPart struct {
	filename    string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, section string, parts ...uploadPart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if section != "" {
		require.NoError(t, w.WriteField("section", section))
	}
	for _, p := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, p.filename))
		header.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestMediaHandler_GetBySection(t *testing.T) {
	tests := []struct {
		name           string
		svc            *mockMediaService
		expectedStatus int
		expectedCount  int
	}{
		{
			name: "ordered items",
			svc: &mockMediaService{items: []models.MediaItem{
				{ID: "a", Section: "hero", Position: 0},
				{ID: "b", Section: "hero", Position: 1},
			}},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "empty section",
			svc:            &mockMediaService{items: []models.MediaItem{}},
			expectedStatus: http.StatusOK,
			expectedCount:  0,
		},
		{
			name:           "service error",
			svc:            &mockMediaService{err: errors.New("db down")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupMediaRouter(tt.svc, nil, 0)
			req := httptest.NewRequest(http.MethodGet, "/api/media/hero", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.NotContains(t, w.Body.String(), "db down")
				return
			}
			var items []models.MediaItem
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
			assert.Len(t, items, tt.expectedCount)
			for i := 1; i < len(items); i++ {
				assert.LessOrEqual(t, items[i-1].Position, items[i].Position)
			}
			assert.NotContains(t, w.Body.String(), "fileData")
		})
	}
}

func TestMediaHandler_GetPlaylist(t *testing.T) {
	svc := &mockMediaService{playlist: []models.PlaylistEntry{
		{MediaItem: models.MediaItem{ID: "a"}, DisplayMs: 3000},
	}}
	router := setupMediaRouter(svc, nil, 0)
	req := httptest.NewRequest(http.MethodGet, "/api/media/hero/playlist", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"displayMs":3000`)
}

func TestMediaHandler_GetFile(t *testing.T) {
	t.Run("full content with cache headers", func(t *testing.T) {
		svc := &mockMediaService{file: &models.FileContent{
			MimeType: "image/png",
			Body:     readSeekCloser{bytes.NewReader([]byte("png-bytes"))},
		}}
		router := setupMediaRouter(svc, denyAll, 0)
		req := httptest.NewRequest(http.MethodGet, "/api/media/file/m1", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))
		assert.Equal(t, "png-bytes", w.Body.String())
	})

	t.Run("range request", func(t *testing.T) {
		svc := &mockMediaService{file: &models.FileContent{
			MimeType: "video/mp4",
			Body:     readSeekCloser{bytes.NewReader([]byte("0123456789"))},
		}}
		router := setupMediaRouter(svc, nil, 0)
		req := httptest.NewRequest(http.MethodGet, "/api/media/file/m1", nil)
		req.Header.Set("Range", "bytes=2-5")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusPartialContent, w.Code)
		assert.Equal(t, "2345", w.Body.String())
		assert.Equal(t, "bytes 2-5/10", w.Header().Get("Content-Range"))
	})

	t.Run("streamed content", func(t *testing.T) {
		svc := &mockMediaService{file: &models.FileContent{
			MimeType: "video/mp4",
			Body:     io.NopCloser(strings.NewReader("stream")),
		}}
		router := setupMediaRouter(svc, nil, 0)
		req := httptest.NewRequest(http.MethodGet, "/api/media/file/m1", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "stream", w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		router := setupMediaRouter(&mockMediaService{err: models.ErrMediaFileNotFound}, nil, 0)
		req := httptest.NewRequest(http.MethodGet, "/api/media/file/missing", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("internal error is generic", func(t *testing.T) {
		router := setupMediaRouter(&mockMediaService{err: errors.New("s3: access denied")}, nil, 0)
		req := httptest.NewRequest(http.MethodGet, "/api/media/file/m1", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "access denied")
	})
}

func TestMediaHandler_Upload(t *testing.T) {
	png := uploadPart{filename: "photo.png", contentType: "image/png", data: []byte("png")}

	t.Run("success", func(t *testing.T) {
		svc := &mockMediaService{items: []models.MediaItem{{ID: "a"}, {ID: "b"}}}
		router := setupMediaRouter(svc, nil, 1024)
		body, contentType := multipartBody(t, "gallery", png,
			uploadPart{filename: "clip.mp4", contentType: "video/mp4", data: []byte("mp4")})
		req := httptest.NewRequest(http.MethodPost, "/api/media/upload", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gallery", svc.uploadedTo)
		require.Len(t, svc.uploaded, 2)
		assert.Equal(t, "photo.png", svc.uploaded[0].Filename)
		assert.Equal(t, "image/png", svc.uploaded[0].MimeType)
		assert.Equal(t, []byte("png"), svc.uploaded[0].Data)
		assert.Equal(t, "video/mp4", svc.uploaded[1].MimeType)

		var items []models.MediaItem
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
		assert.Len(t, items, 2)
	})

	tooMany := make([]uploadPart, services.MaxFilesPerUpload+1)
	for i := range tooMany {
		tooMany[i] = uploadPart{filename: fmt.Sprintf("%d.png", i), contentType: "image/png", data: []byte("x")}
	}

	tests := []struct {
		name           string
		section        string
		parts          []uploadPart
		svcErr         error
		expectedStatus int
		expectCall     bool
	}{
		{
			name:           "missing section",
			parts:          []uploadPart{png},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no files",
			section:        "hero",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "too many files",
			section:        "hero",
			parts:          tooMany,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "file too large",
			section:        "hero",
			parts:          []uploadPart{{filename: "big.png", contentType: "image/png", data: bytes.Repeat([]byte("x"), 2048)}},
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:           "conversion failure",
			section:        "hero",
			parts:          []uploadPart{{filename: "bad.heic", contentType: "image/heic", data: []byte("x")}},
			svcErr:         fmt.Errorf("%w: bad.heic: corrupt", services.ErrConversionFailed),
			expectedStatus: http.StatusInternalServerError,
			expectCall:     true,
		},
		{
			name:           "storage failure",
			section:        "hero",
			parts:          []uploadPart{png},
			svcErr:         errors.New("disk full"),
			expectedStatus: http.StatusInternalServerError,
			expectCall:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMediaService{err: tt.svcErr}
			router := setupMediaRouter(svc, nil, 1024)
			body, contentType := multipartBody(t, tt.section, tt.parts...)
			req := httptest.NewRequest(http.MethodPost, "/api/media/upload", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectCall, svc.uploaded != nil)
			assert.NotContains(t, w.Body.String(), "corrupt")
			assert.NotContains(t, w.Body.String(), "disk full")
		})
	}

	t.Run("not multipart", func(t *testing.T) {
		router := setupMediaRouter(&mockMediaService{}, nil, 1024)
		req := httptest.NewRequest(http.MethodPost, "/api/media/upload", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMediaHandler_WriteRoutesRequireAuth(t *testing.T) {
	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/media/upload"},
		{http.MethodPost, "/api/media"},
		{http.MethodPost, "/api/media/reorder"},
		{http.MethodPatch, "/api/media/m1"},
		{http.MethodDelete, "/api/media/m1"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			svc := &mockMediaService{}
			router := setupMediaRouter(svc, denyAll, 0)
			req := httptest.NewRequest(rt.method, rt.path, strings.NewReader("{}"))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Empty(t, svc.deletedID)
			assert.Nil(t, svc.createReq)
		})
	}
}

func TestMediaHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		svc            *mockMediaService
		expectedStatus int
	}{
		{
			name:           "created",
			body:           `{"section":"gallery","type":"youtube","url":"https://youtu.be/abc"}`,
			svc:            &mockMediaService{item: &models.MediaItem{ID: "m1", Type: models.MediaTypeYouTube}},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed json",
			body:           `{"section":`,
			svc:            &mockMediaService{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error",
			body:           `{"section":"gallery","type":"gif","url":"x"}`,
			svc:            &mockMediaService{err: fmt.Errorf("%w: bad type", services.ErrInvalidMediaItem)},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "service error",
			body:           `{"section":"gallery","type":"image","url":"x"}`,
			svc:            &mockMediaService{err: errors.New("db down")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupMediaRouter(tt.svc, nil, 0)
			req := httptest.NewRequest(http.MethodPost, "/api/media", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestMediaHandler_Update(t *testing.T) {
	t.Run("only provided fields are passed on", func(t *testing.T) {
		svc := &mockMediaService{item: &models.MediaItem{ID: "m1", Duration: 9}}
		router := setupMediaRouter(svc, nil, 0)
		req := httptest.NewRequest(http.MethodPatch, "/api/media/m1", strings.NewReader(`{"duration":9}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, svc.updateReq)
		require.NotNil(t, svc.updateReq.Duration)
		assert.Equal(t, 9, *svc.updateReq.Duration)
		assert.Nil(t, svc.updateReq.Section)
		assert.Nil(t, svc.updateReq.URL)
		assert.Nil(t, svc.updateReq.Title)
		assert.Nil(t, svc.updateReq.Position)
	})

	t.Run("not found", func(t *testing.T) {
		router := setupMediaRouter(&mockMediaService{err: models.ErrMediaItemNotFound}, nil, 0)
		req := httptest.NewRequest(http.MethodPatch, "/api/media/missing", strings.NewReader(`{"duration":9}`))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMediaHandler_Delete(t *testing.T) {
	svc := &mockMediaService{}
	router := setupMediaRouter(svc, nil, 0)
	req := httptest.NewRequest(http.MethodDelete, "/api/media/m1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "m1", svc.deletedID)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}

func TestMediaHandler_Reorder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		svcErr         error
		expectedStatus int
	}{
		{
			name:           "success",
			body:           `{"section":"gallery","ids":["c","a","b"]}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing ids",
			body:           `{"section":"gallery"}`,
			svcErr:         services.ErrInvalidReorder,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "service error",
			body:           `{"section":"gallery","ids":["a"]}`,
			svcErr:         errors.New("deadlock"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMediaService{err: tt.svcErr}
			router := setupMediaRouter(svc, nil, 0)
			req := httptest.NewRequest(http.MethodPost, "/api/media/reorder", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, []string{"c", "a", "b"}, svc.reorderReq.IDs)
			}
		})
	}
}
