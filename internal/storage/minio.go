package storage

import (
	"context"
	"fmt"
	"io"

	"aura-hype/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const codeNoSuchKey = "NoSuchKey"

// MinioBackend stores objects in a MinIO bucket
type MinioBackend struct {
	client *minio.Client
	bucket string
}

// NewMinio creates a MinIO backed store
func NewMinio(cfg config.MinioConfig) (*MinioBackend, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("storage/minio: MINIO_ENDPOINT and MINIO_BUCKET must be configured")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage/minio: create client: %w", err)
	}

	return &MinioBackend{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (b *MinioBackend) EnsureBucket(ctx context.Context) error {
	exists, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("storage/minio: check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("storage/minio: make bucket: %w", err)
	}
	return nil
}

func (b *MinioBackend) Name() string {
	return "minio"
}

func (b *MinioBackend) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*ObjectInfo, error) {
	info, err := b.client.PutObject(ctx, b.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("storage/minio: put %s: %w", key, err)
	}

	return &ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ContentType:  contentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

func (b *MinioBackend) Get(ctx context.Context, key string) (*Object, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, b.wrapError(key, err)
	}

	// GetObject is lazy; Stat performs the request
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, b.wrapError(key, err)
	}

	return &Object{
		Body: obj,
		Info: ObjectInfo{
			Key:          key,
			Size:         stat.Size,
			ContentType:  stat.ContentType,
			ETag:         stat.ETag,
			LastModified: stat.LastModified,
		},
	}, nil
}

// List uses the last key of the previous page as cursor
func (b *MinioBackend) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:     opts.Prefix,
		StartAfter: opts.Cursor,
		Recursive:  true,
	})

	page := &ListPage{Items: []ObjectInfo{}}
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("storage/minio: list %q: %w", opts.Prefix, obj.Err)
		}
		if opts.Limit > 0 && len(page.Items) == opts.Limit {
			page.NextCursor = page.Items[len(page.Items)-1].Key
			break
		}
		page.Items = append(page.Items, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}

	return page, nil
}

func (b *MinioBackend) wrapError(key string, err error) error {
	if minio.ToErrorResponse(err).Code == codeNoSuchKey {
		return ErrObjectNotFound
	}
	return fmt.Errorf("storage/minio: get %s: %w", key, err)
}
