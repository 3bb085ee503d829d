package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process ObjectStore.
type MemoryStore struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string]memoryObject
}

type memoryObject struct {
	contentType string
	data        []byte
}

// NewMemoryStore creates an empty MemoryStore whose URLs reference bucket.
func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Upload(ctx context.Context, path, contentType string, data []byte) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = memoryObject{contentType: contentType, data: append([]byte(nil), data...)}
	return Object{Path: path, URL: DownloadURL(s.bucket, path, "")}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[path]; !ok {
		return fmt.Errorf("delete %s: %w", path, ErrObjectNotFound)
	}
	delete(s.objects, path)
	return nil
}

func (s *MemoryStore) URL(ctx context.Context, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.objects[path]; !ok {
		return "", fmt.Errorf("url %s: %w", path, ErrObjectNotFound)
	}
	return DownloadURL(s.bucket, path, ""), nil
}

// ContentType returns the stored content type of path, or "" if absent.
func (s *MemoryStore) ContentType(path string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[path].contentType
}
