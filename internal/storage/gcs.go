package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSStore writes into one Cloud Storage bucket (the Firebase project bucket).
// Logical bucket names become key prefixes.
type GCSStore struct {
	bucket *gcs.BucketHandle
	name   string
}

// NewGCSStore wraps a bucket handle, for example the Firebase default bucket
func NewGCSStore(bucket *gcs.BucketHandle, name string) *GCSStore {
	return &GCSStore{bucket: bucket, name: name}
}

func (s *GCSStore) Bucket(name string) Bucket {
	return &gcsBucket{store: s, prefix: name}
}

type gcsBucket struct {
	store  *GCSStore
	prefix string
}

func (b *gcsBucket) key(p string) string {
	return b.prefix + "/" + p
}

func (b *gcsBucket) Upload(ctx context.Context, objectPath string, body io.Reader, opts UploadOptions) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}

	obj := b.store.bucket.Object(b.key(p))
	if !opts.Upsert {
		obj = obj.If(gcs.Conditions{DoesNotExist: true})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.CacheControl = opts.CacheControl

	if _, err := io.Copy(w, body); err != nil {
		w.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return ErrObjectExists
		}
		return fmt.Errorf("upload object: %w", err)
	}
	return nil
}

func (b *gcsBucket) PublicURL(objectPath string) string {
	key := b.key(strings.TrimPrefix(objectPath, "/"))
	u := &url.URL{Path: "/" + b.store.name + "/" + key}
	return "https://storage.googleapis.com" + u.EscapedPath()
}
