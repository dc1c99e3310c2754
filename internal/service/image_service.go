package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"aura-hype/internal/images"
	"aura-hype/internal/metrics"
	"aura-hype/internal/storage"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Listing page bounds
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

var (
	ErrStorageUnavailable = errors.New("image storage is not configured")
	ErrUploadFailed       = errors.New("image upload failed")
)

// ListRequest selects a page of stored image keys
type ListRequest struct {
	Prefix     string
	Cursor     string
	Limit      int
	ImagesOnly bool
}

// ImageService stores uploaded images and resolves keys back to bytes or URLs
type ImageService interface {
	Store(ctx context.Context, body io.Reader, size int64, contentType, filename string) (string, error)
	Resolve(ctx context.Context, key string) (*storage.Object, error)
	List(ctx context.Context, req ListRequest) (*storage.ListPage, error)
	DisplayURL(key string) string
}

type imageService struct {
	backend storage.Backend
	urls    images.URLResolver
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewImageService creates an ImageService writing to backend. A nil backend
// makes every storage call fail with ErrStorageUnavailable.
func NewImageService(backend storage.Backend, urls images.URLResolver, m *metrics.Metrics, logger *zap.Logger) ImageService {
	return &imageService{
		backend: backend,
		urls:    urls,
		metrics: m,
		logger:  logger,
	}
}

func (s *imageService) backendName() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.Name()
}

// Store validates the declared content type, generates a key and writes the
// bytes to the configured backend. Nothing is written on rejection.
func (s *imageService) Store(ctx context.Context, body io.Reader, size int64, contentType, filename string) (string, error) {
	normalized, err := images.ValidateContentType(contentType)
	if err != nil {
		s.metrics.RecordUpload(s.backendName(), metrics.UploadRejected)
		return "", err
	}

	if s.backend == nil {
		s.metrics.RecordUpload("", metrics.UploadUnavailable)
		return "", ErrStorageUnavailable
	}

	key := images.GenerateKey(filename)
	if _, err := s.backend.Put(ctx, key, body, size, normalized); err != nil {
		s.metrics.RecordUpload(s.backend.Name(), metrics.UploadFailed)
		s.logger.Error("Failed to store image",
			zap.String("key", key),
			zap.String("backend", s.backend.Name()),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	s.metrics.RecordUpload(s.backend.Name(), metrics.UploadStored)
	s.logger.Info("Image stored",
		zap.String("key", key),
		zap.String("content_type", normalized),
		zap.Int64("size", size),
		zap.String("backend", s.backend.Name()),
	)

	return key, nil
}

// Resolve opens the object stored under key. The content type falls back to
// image/jpeg when the backend recorded none.
func (s *imageService) Resolve(ctx context.Context, key string) (*storage.Object, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: image key is required", ErrInvalidInput)
	}
	if s.backend == nil {
		s.metrics.RecordResolve("error")
		return nil, ErrStorageUnavailable
	}

	obj, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			s.metrics.RecordResolve("miss")
			return nil, err
		}
		s.metrics.RecordResolve("error")
		return nil, fmt.Errorf("failed to resolve image: %w", err)
	}

	if obj.Info.ContentType == "" {
		obj.Info.ContentType = images.DefaultContentType
	}

	s.metrics.RecordResolve("hit")
	return obj, nil
}

// List returns one page of stored keys. The image-only filter applies after
// paging, so a filtered page may hold fewer items than the limit.
func (s *imageService) List(ctx context.Context, req ListRequest) (*storage.ListPage, error) {
	if s.backend == nil {
		return nil, ErrStorageUnavailable
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	page, err := s.backend.List(ctx, storage.ListOptions{
		Prefix: req.Prefix,
		Cursor: req.Cursor,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	if req.ImagesOnly {
		page.Items = lo.Filter(page.Items, func(item storage.ObjectInfo, _ int) bool {
			return images.IsImageKey(item.Key)
		})
	}

	return page, nil
}

func (s *imageService) DisplayURL(key string) string {
	return s.urls.DisplayURL(key)
}
