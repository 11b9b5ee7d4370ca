// Package storage puts uploaded files into named buckets and hands back the
// public URL they are served from.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrObjectExists is returned when an upload without upsert hits an existing object
var ErrObjectExists = errors.New("The resource already exists")

// ErrInvalidPath is returned for empty paths or paths escaping their bucket
var ErrInvalidPath = errors.New("Invalid object path")

// UploadOptions tune a single upload
type UploadOptions struct {
	ContentType  string
	CacheControl string
	// Upsert overwrites an existing object instead of failing with ErrObjectExists.
	Upsert bool
}

// Bucket is a namespace of objects addressed by slash-separated paths
type Bucket interface {
	Upload(ctx context.Context, objectPath string, body io.Reader, opts UploadOptions) error
	PublicURL(objectPath string) string
}

// Store hands out buckets by name
type Store interface {
	Bucket(name string) Bucket
}

// cleanPath normalizes an object path and rejects anything that would leave the bucket.
func cleanPath(objectPath string) (string, error) {
	p := strings.TrimPrefix(objectPath, "/")
	if p == "" {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}
	return path.Clean(p), nil
}
