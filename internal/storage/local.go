package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps objects under dir/<bucket>/<path> and serves them from
// baseURL + "/media/".
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at dir
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir is the root directory served under /media
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Bucket(name string) Bucket {
	return &localBucket{store: s, name: name}
}

type localBucket struct {
	store *LocalStore
	name  string
}

func (b *localBucket) Upload(ctx context.Context, objectPath string, body io.Reader, opts UploadOptions) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(b.store.dir, b.name, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create bucket directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.Upsert {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrObjectExists
		}
		return fmt.Errorf("open object: %w", err)
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(target)
		return fmt.Errorf("write object: %w", err)
	}
	return f.Close()
}

func (b *localBucket) PublicURL(objectPath string) string {
	u := &url.URL{Path: "/media/" + b.name + "/" + strings.TrimPrefix(objectPath, "/")}
	return b.store.baseURL + u.EscapedPath()
}
