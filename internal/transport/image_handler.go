package transport

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"aura-hype/internal/images"
	"aura-hype/internal/middleware"
	"aura-hype/internal/service"
	"aura-hype/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ImmutableCacheControl is sent with every served image; keys never change content
const ImmutableCacheControl = "public, max-age=31536000, immutable"

// UploadResponse is returned by a successful upload
type UploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ImageHandler handles image upload, serving and listing
type ImageHandler struct {
	imageService service.ImageService
	maxUpload    int64
	logger       *zap.Logger
}

// NewImageHandler creates a new ImageHandler. maxUpload bounds the multipart body in bytes.
func NewImageHandler(imageService service.ImageService, maxUpload int64, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		maxUpload:    maxUpload,
		logger:       logger,
	}
}

// RegisterRoutes registers the image routes. Uploads go through limiter.
func (h *ImageHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.Get("/api/image", h.ServeImage)
	r.Get("/api/image/*", h.ServeImage)

	r.Route("/api/images", func(r chi.Router) {
		r.Get("/", h.ListImages)
		r.With(limiter).Post("/", h.Upload)
	})
}

// Upload handles POST /api/images with a multipart "file" field
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			middleware.RespondWithError(w, http.StatusBadRequest, "file too large")
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	key, err := h.imageService.Store(r.Context(), file, header.Size, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrInvalidContentType):
			middleware.RespondWithErrorDetails(w, http.StatusBadRequest, "invalid file type", map[string]interface{}{
				"allowed": images.AllowedContentTypes,
			})
		case errors.Is(err, service.ErrStorageUnavailable):
			h.logger.Error("Upload rejected, storage not configured")
			middleware.RespondWithError(w, http.StatusInternalServerError, "storage not configured")
		default:
			h.logger.Error("Upload failed", zap.Error(err), zap.String("filename", header.Filename))
			middleware.RespondWithError(w, http.StatusInternalServerError, "upload failed")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, UploadResponse{
		Key: key,
		URL: h.imageService.DisplayURL(key),
	})
}

// imageKey reads the key from the path wildcard or the "key" query parameter
func imageKey(r *http.Request) string {
	key := chi.URLParam(r, "*")
	if key != "" && r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(key); err == nil {
			key = unescaped
		}
	}
	if key == "" {
		key = r.URL.Query().Get("key")
	}
	return strings.TrimSpace(key)
}

// ServeImage handles GET /api/image/{key...} and GET /api/image?key=
func (h *ImageHandler) ServeImage(w http.ResponseWriter, r *http.Request) {
	key := imageKey(r)
	if key == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing image key")
		return
	}

	obj, err := h.imageService.Resolve(r.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrObjectNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "image not found")
		case errors.Is(err, service.ErrInvalidInput):
			middleware.RespondWithError(w, http.StatusBadRequest, "missing image key")
		case errors.Is(err, service.ErrStorageUnavailable):
			middleware.RespondWithError(w, http.StatusInternalServerError, "storage not configured")
		default:
			h.logger.Error("Failed to serve image", zap.Error(err), zap.String("key", key))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load image")
		}
		return
	}
	defer obj.Body.Close()

	header := w.Header()
	header.Set("Cache-Control", ImmutableCacheControl)
	if obj.Info.ETag != "" {
		header.Set("ETag", obj.Info.ETag)
		if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, obj.Info.ETag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	header.Set("Content-Type", obj.Info.ContentType)
	if obj.Info.Size > 0 {
		header.Set("Content-Length", strconv.FormatInt(obj.Info.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		h.logger.Warn("Image stream interrupted", zap.Error(err), zap.String("key", key))
	}
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// ListImages handles GET /api/images?prefix=&cursor=&limit=&images_only=
func (h *ImageHandler) ListImages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := service.ListRequest{
		Prefix: query.Get("prefix"),
		Cursor: query.Get("cursor"),
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		req.Limit = limit
	}

	if raw := query.Get("images_only"); raw != "" {
		imagesOnly, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid images_only")
			return
		}
		req.ImagesOnly = imagesOnly
	}

	page, err := h.imageService.List(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrStorageUnavailable) {
			middleware.RespondWithError(w, http.StatusInternalServerError, "storage not configured")
			return
		}
		h.logger.Error("Failed to list images", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list images")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, page)
}
