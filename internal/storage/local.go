package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const metaDir = ".meta"

// LocalBackend keeps objects as files under a root directory. Content type
// and ETag live in a JSON sidecar under <root>/.meta.
type LocalBackend struct {
	root string
}

type localMeta struct {
	ContentType string `json:"content_type"`
	ETag        string `json:"etag"`
}

// NewLocal creates the root directory if needed
func NewLocal(root string) (*LocalBackend, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalBackend{root: root}, nil
}

func (b *LocalBackend) Name() string {
	return "local"
}

// Root returns the directory objects are stored under
func (b *LocalBackend) Root() string {
	return b.root
}

func (b *LocalBackend) objectPath(key string) (string, error) {
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", ErrInvalidKey
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == metaDir || strings.HasPrefix(clean, metaDir+string(filepath.Separator)) {
		return "", ErrInvalidKey
	}
	return filepath.Join(b.root, clean), nil
}

func (b *LocalBackend) metaPath(key string) string {
	return filepath.Join(b.root, metaDir, filepath.Clean(filepath.FromSlash(key))+".json")
}

func (b *LocalBackend) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*ObjectInfo, error) {
	path, err := b.objectPath(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hash := md5.New()
	written, err := io.Copy(tmp, io.TeeReader(body, hash))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write object: %w", err)
	}

	meta := localMeta{
		ContentType: contentType,
		ETag:        `"` + hex.EncodeToString(hash.Sum(nil)) + `"`,
	}
	if err := b.writeMeta(key, meta); err != nil {
		return nil, err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("failed to store object: %w", err)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}

	return &ObjectInfo{
		Key:          key,
		Size:         written,
		ContentType:  contentType,
		ETag:         meta.ETag,
		LastModified: stat.ModTime(),
	}, nil
}

func (b *LocalBackend) writeMeta(key string, meta localMeta) error {
	path := b.metaPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}
	return nil
}

func (b *LocalBackend) readMeta(key string) localMeta {
	var meta localMeta
	data, err := os.ReadFile(b.metaPath(key))
	if err != nil {
		return meta
	}
	_ = json.Unmarshal(data, &meta)
	return meta
}

func (b *LocalBackend) Get(ctx context.Context, key string) (*Object, error) {
	path, err := b.objectPath(key)
	if err != nil {
		return nil, ErrObjectNotFound
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}
	if stat.IsDir() {
		_ = file.Close()
		return nil, ErrObjectNotFound
	}

	meta := b.readMeta(key)
	if meta.ETag == "" {
		// Files copied in by hand have no sidecar
		meta.ETag = `"` + strconv.FormatInt(stat.Size(), 16) + "-" + strconv.FormatInt(stat.ModTime().UnixNano(), 16) + `"`
	}

	return &Object{
		Body: file,
		Info: ObjectInfo{
			Key:          key,
			Size:         stat.Size(),
			ContentType:  meta.ContentType,
			ETag:         meta.ETag,
			LastModified: stat.ModTime(),
		},
	}, nil
}

// List walks the root in key order. The cursor is the last key of the previous page.
func (b *LocalBackend) List(ctx context.Context, opts ListOptions) (*ListPage, error) {
	var infos []ObjectInfo

	err := filepath.WalkDir(b.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == metaDir && filepath.Dir(path) == filepath.Clean(b.root) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".upload-") {
			return nil
		}

		rel, err := filepath.Rel(b.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, opts.Prefix) || (opts.Cursor != "" && key <= opts.Cursor) {
			return nil
		}

		stat, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, ObjectInfo{
			Key:          key,
			Size:         stat.Size(),
			LastModified: stat.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	page := &ListPage{Items: infos}
	if opts.Limit > 0 && len(infos) > opts.Limit {
		page.Items = infos[:opts.Limit]
		page.NextCursor = page.Items[len(page.Items)-1].Key
	}
	if page.Items == nil {
		page.Items = []ObjectInfo{}
	}

	return page, nil
}
