package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const downloadTokenKey = "firebaseStorageDownloadTokens"

// BucketStore implements ObjectStore on a Cloud Storage bucket. Objects carry a Firebase
// download token so the returned URLs work for the mobile and web clients.
type BucketStore struct {
	bucket *gcs.BucketHandle
	name   string
	logger *zap.Logger
}

// NewBucketStore wraps a bucket handle.
func NewBucketStore(bucket *gcs.BucketHandle, bucketName string, logger *zap.Logger) (*BucketStore, error) {
	if bucket == nil || bucketName == "" {
		return nil, errors.New("storage bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BucketStore{bucket: bucket, name: bucketName, logger: logger}, nil
}

// Upload writes data to path.
func (s *BucketStore) Upload(ctx context.Context, path, contentType string, data []byte) (Object, error) {
	token := uuid.NewString()
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{downloadTokenKey: token}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return Object{}, fmt.Errorf("upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", path, err)
	}
	s.logger.Debug("Uploaded object", zap.String("path", path), zap.Int("bytes", len(data)))
	return Object{Path: path, URL: DownloadURL(s.name, path, token)}, nil
}

// Delete removes the object at path.
func (s *BucketStore) Delete(ctx context.Context, path string) error {
	err := s.bucket.Object(path).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", path, ErrObjectNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// URL looks up the download token of an existing object.
func (s *BucketStore) URL(ctx context.Context, path string) (string, error) {
	attrs, err := s.bucket.Object(path).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return "", fmt.Errorf("url %s: %w", path, ErrObjectNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("url %s: %w", path, err)
	}
	return DownloadURL(s.name, path, attrs.Metadata[downloadTokenKey]), nil
}

// DownloadURL builds the Firebase Storage download URL for an object.
func DownloadURL(bucket, path, token string) string {
	u := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", bucket, url.PathEscape(path))
	if token != "" {
		u += "&token=" + url.QueryEscape(token)
	}
	return u
}
