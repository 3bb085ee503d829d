package database

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a document id does not exist in the addressed collection.
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a create collides with an existing document id.
	ErrAlreadyExists = errors.New("document already exists")
)

// Document is a raw document read from a collection.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// DocumentStore defines the operations the repositories need from a document database.
// Collections are addressed by name and documents by id. Set creates a document under a
// caller-chosen id and fails with ErrAlreadyExists if it is taken. Update and Delete fail
// with ErrNotFound when the id is absent. Latest returns the documents with the highest
// values of field, highest first; documents without the field are left out and a
// non-positive limit means no limit.
type DocumentStore interface {
	Create(ctx context.Context, collection string, data map[string]interface{}) (string, error)
	Set(ctx context.Context, collection string, docID string, data map[string]interface{}) error
	Get(ctx context.Context, collection string, docID string) (Document, error)
	GetAll(ctx context.Context, collection string) ([]Document, error)
	Update(ctx context.Context, collection string, docID string, data map[string]interface{}) error
	Delete(ctx context.Context, collection string, docID string) error
	Query(ctx context.Context, collection string, field string, value interface{}) ([]Document, error)
	Latest(ctx context.Context, collection string, field string, limit int) ([]Document, error)
	Close() error
}
