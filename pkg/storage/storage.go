package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound is returned when an object path does not exist in the bucket.
var ErrObjectNotFound = errors.New("storage object not found")

// Object describes an uploaded object.
type Object struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// ObjectStore stores binary objects addressed by path.
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (Object, error)
	Delete(ctx context.Context, path string) error
	// URL returns the download URL of an existing object.
	URL(ctx context.Context, path string) (string, error)
}
