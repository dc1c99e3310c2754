package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"aura-hype/internal/images"
	"aura-hype/internal/service"
	"aura-hype/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupImageRouter(t *testing.T, backend storage.Backend, maxUpload int64) *chi.Mux {
	t.Helper()

	imageService := service.NewImageService(backend, images.URLResolver{LocalDev: true}, nil, zap.NewNop())
	handler := NewImageHandler(imageService, maxUpload, zap.NewNop())

	r := chi.NewRouter()
	handler.RegisterRoutes(r, noLimit)
	return r
}

func newLocalBackend(t *testing.T) *storage.LocalBackend {
	t.Helper()
	backend, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return backend
}

func uploadRequest(t *testing.T, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func upload(t *testing.T, router http.Handler, contentType string, data []byte) string {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "photo.png", contentType, data))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp UploadResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Key
}

func TestImageHandler_UploadThenServe(t *testing.T) {
	router := setupImageRouter(t, newLocalBackend(t), 1<<20)
	data := []byte("\x89PNG fake image bytes")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "photo.png", "image/png", data))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp UploadResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, images.IsGeneratedKey(resp.Key))
	assert.True(t, strings.HasSuffix(resp.Key, ".png"))
	assert.Equal(t, "/uploads/"+resp.Key, resp.URL)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/image/"+resp.Key, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, data, w.Body.Bytes())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, ImmutableCacheControl, w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("ETag"))
}

func TestImageHandler_ServeByQueryKey(t *testing.T) {
	router := setupImageRouter(t, newLocalBackend(t), 1<<20)
	key := upload(t, router, "image/webp", []byte("webp"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/image?key="+key, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "webp", w.Body.String())
	assert.Equal(t, "image/webp", w.Header().Get("Content-Type"))
}

func TestImageHandler_ServeNestedKey(t *testing.T) {
	backend := newLocalBackend(t)
	_, err := backend.Put(t.Context(), "products/nike/air max.jpg", strings.NewReader("jpeg"), 4, "image/jpeg")
	require.NoError(t, err)

	router := setupImageRouter(t, backend, 1<<20)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/image/products/nike/air%20max.jpg", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "jpeg", w.Body.String())
}

func TestImageHandler_NotModified(t *testing.T) {
	router := setupImageRouter(t, newLocalBackend(t), 1<<20)
	key := upload(t, router, "image/jpeg", []byte("jpeg"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/image/"+key, nil))
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/image/"+key, nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestImageHandler_ServeErrors(t *testing.T) {
	router := setupImageRouter(t, newLocalBackend(t), 1<<20)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/image", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/image/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	unavailable := setupImageRouter(t, nil, 1<<20)
	w = httptest.NewRecorder()
	unavailable.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/image/x.jpg", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestImageHandler_UploadRejections(t *testing.T) {
	backend := newLocalBackend(t)
	router := setupImageRouter(t, backend, 1<<20)

	t.Run("wrong content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "file", "notes.txt", "text/plain", []byte("hello")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, "image", "photo.png", "image/png", []byte("png")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/images", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	page, err := backend.List(t.Context(), storage.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestImageHandler_UploadTooLarge(t *testing.T) {
	router := setupImageRouter(t, newLocalBackend(t), 64)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "big.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 1024)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageHandler_UploadWithoutStorage(t *testing.T) {
	router := setupImageRouter(t, nil, 1<<20)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "file", "photo.png", "image/png", []byte("png")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestImageHandler_List(t *testing.T) {
	backend := newLocalBackend(t)
	router := setupImageRouter(t, backend, 1<<20)

	upload(t, router, "image/png", []byte("one"))
	upload(t, router, "image/png", []byte("two"))
	_, err := backend.Put(t.Context(), "readme.txt", strings.NewReader("text"), 4, "text/plain")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/images?images_only=true", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var page storage.ListPage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
	assert.Len(t, page.Items, 2)
	for _, item := range page.Items {
		assert.True(t, images.IsImageKey(item.Key), item.Key)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/images?limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&page))
	assert.Len(t, page.Items, 1)
	assert.NotEmpty(t, page.NextCursor)
}

func TestImageHandler_ListBadParams(t *testing.T) {
	router := setupImageRouter(t, newLocalBackend(t), 1<<20)

	for _, query := range []string{"limit=abc", "limit=-1", "images_only=maybe"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/images?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, query)
	}
}

func TestEtagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"abc"`, `"abc"`))
	assert.True(t, etagMatches(`"x", W/"abc"`, `"abc"`))
	assert.True(t, etagMatches(`*`, `"abc"`))
	assert.False(t, etagMatches(`"abd"`, `"abc"`))
}
