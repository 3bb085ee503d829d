package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process DocumentStore. It keeps insertion order per collection so
// that reads are deterministic.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	newID       func() string
}

type memoryCollection struct {
	docs  map[string]map[string]interface{}
	order []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		newID: func() string {
			return uuid.NewString()
		},
	}
}

// Create stores a copy of data under a generated id.
func (s *MemoryStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if err := s.put(collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Set stores data under a caller-chosen id, failing if the id already exists.
func (s *MemoryStore) Set(ctx context.Context, collection, docID string, data map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.put(collection, docID, data)
}

func (s *MemoryStore) put(collection, id string, data map[string]interface{}) error {
	coll := s.collection(collection)
	if _, exists := coll.docs[id]; exists {
		return fmt.Errorf("create %s/%s: %w", collection, id, ErrAlreadyExists)
	}
	coll.docs[id] = copyFields(data)
	coll.order = append(coll.order, id)
	return nil
}

// Get returns a copy of a single document.
func (s *MemoryStore) Get(ctx context.Context, collection string, docID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.collections[collection]
	if !ok {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, docID, ErrNotFound)
	}
	data, ok := coll.docs[docID]
	if !ok {
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, docID, ErrNotFound)
	}
	return Document{ID: docID, Data: copyFields(data)}, nil
}

// GetAll returns copies of every document in insertion order.
func (s *MemoryStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	return s.filter(ctx, collection, func(map[string]interface{}) bool { return true })
}

// Update merges data into an existing document.
func (s *MemoryStore) Update(ctx context.Context, collection string, docID string, data map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("update %s/%s: %w", collection, docID, ErrNotFound)
	}
	existing, ok := coll.docs[docID]
	if !ok {
		return fmt.Errorf("update %s/%s: %w", collection, docID, ErrNotFound)
	}
	for field, value := range data {
		existing[field] = value
	}
	return nil
}

// Delete removes an existing document.
func (s *MemoryStore) Delete(ctx context.Context, collection string, docID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("delete %s/%s: %w", collection, docID, ErrNotFound)
	}
	if _, ok := coll.docs[docID]; !ok {
		return fmt.Errorf("delete %s/%s: %w", collection, docID, ErrNotFound)
	}
	delete(coll.docs, docID)
	for i, id := range coll.order {
		if id == docID {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	return nil
}

// Query returns the documents whose field equals value.
func (s *MemoryStore) Query(ctx context.Context, collection string, field string, value interface{}) ([]Document, error) {
	return s.filter(ctx, collection, func(data map[string]interface{}) bool {
		got, ok := data[field]
		return ok && reflect.DeepEqual(got, value)
	})
}

// Latest sorts the documents holding field by its value, highest first. Ties keep
// insertion order.
func (s *MemoryStore) Latest(ctx context.Context, collection string, field string, limit int) ([]Document, error) {
	docs, err := s.filter(ctx, collection, func(data map[string]interface{}) bool {
		_, ok := data[field]
		return ok
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return compareValues(docs[i].Data[field], docs[j].Data[field]) > 0
	})
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// Collections lists the names of non-empty collections, sorted.
func (s *MemoryStore) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name, coll := range s.collections {
		if len(coll.docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *MemoryStore) filter(ctx context.Context, collection string, keep func(map[string]interface{}) bool) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0)
	coll, ok := s.collections[collection]
	if !ok {
		return docs, nil
	}
	for _, id := range coll.order {
		data := coll.docs[id]
		if keep(data) {
			docs = append(docs, Document{ID: id, Data: copyFields(data)})
		}
	}
	return docs, nil
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	coll, ok := s.collections[name]
	if !ok {
		coll = &memoryCollection{docs: make(map[string]map[string]interface{})}
		s.collections[name] = coll
	}
	return coll
}

// copyFields makes a shallow copy so callers cannot mutate stored documents through maps
// they passed in or received.
func copyFields(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// compareValues orders timestamps, numbers and strings. Values of different kinds compare
// by kind name so the order stays total.
func compareValues(a, b interface{}) int {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func toFloat(v interface{}) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
