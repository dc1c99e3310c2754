package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"aura-hype/internal/config"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
	ErrUnknownDriver  = errors.New("unknown storage driver")
)

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Object is an open stored object. Callers must close Body.
type Object struct {
	Body io.ReadCloser
	Info ObjectInfo
}

// ListOptions selects one page of a key listing
type ListOptions struct {
	Prefix string
	Cursor string
	Limit  int
}

// ListPage is one page of a key listing. An empty NextCursor means the listing is complete.
type ListPage struct {
	Items      []ObjectInfo `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// Backend is a store of immutable image objects addressed by key
type Backend interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*ObjectInfo, error)
	Get(ctx context.Context, key string) (*Object, error)
	List(ctx context.Context, opts ListOptions) (*ListPage, error)
	Name() string
}

// New builds the backend selected by cfg.Storage.Driver
func New(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverLocal, "":
		return NewLocal(cfg.Storage.LocalDir)
	case config.StorageDriverS3:
		return NewS3(ctx, cfg.S3)
	case config.StorageDriverMinio:
		return NewMinio(cfg.Minio)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Storage.Driver)
	}
}
