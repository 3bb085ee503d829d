package database

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements the DocumentStore interface on top of Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) (*FirestoreStore, error) {
	if client == nil {
		return nil, errors.New("firestore client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirestoreStore{client: client, logger: logger}, nil
}

// Create adds a new document with a Firestore-generated id.
func (s *FirestoreStore) Create(ctx context.Context, collection string, data map[string]interface{}) (string, error) {
	docRef, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		s.logger.Error("Error adding document", zap.String("collection", collection), zap.Error(err))
		return "", wrapError("create", collection, "", err)
	}
	return docRef.ID, nil
}

// Set creates a document under docID. Firestore's Create rejects existing ids.
func (s *FirestoreStore) Set(ctx context.Context, collection string, docID string, data map[string]interface{}) error {
	if docID == "" {
		return fmt.Errorf("set %s: document id is required", collection)
	}
	if _, err := s.client.Collection(collection).Doc(docID).Create(ctx, data); err != nil {
		return wrapError("set", collection, docID, err)
	}
	return nil
}

// Get reads a single document.
func (s *FirestoreStore) Get(ctx context.Context, collection string, docID string) (Document, error) {
	if docID == "" {
		return Document{}, fmt.Errorf("get %s: document id is required", collection)
	}
	snap, err := s.client.Collection(collection).Doc(docID).Get(ctx)
	if err != nil {
		return Document{}, wrapError("get", collection, docID, err)
	}
	return Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// GetAll reads every document of a collection.
func (s *FirestoreStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	return s.collect(ctx, "getAll", collection, s.client.Collection(collection).Documents(ctx))
}

// Update merges the given fields into an existing document. Firestore's Update fails
// with NotFound when the document does not exist, which is surfaced as ErrNotFound.
func (s *FirestoreStore) Update(ctx context.Context, collection string, docID string, data map[string]interface{}) error {
	if docID == "" {
		return fmt.Errorf("update %s: document id is required", collection)
	}
	updates := make([]firestore.Update, 0, len(data))
	for field, value := range data {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{field}, Value: value})
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := s.client.Collection(collection).Doc(docID).Update(ctx, updates)
	if err != nil {
		return wrapError("update", collection, docID, err)
	}
	return nil
}

// Delete removes a document. The Exists precondition makes deleting an absent id fail.
func (s *FirestoreStore) Delete(ctx context.Context, collection string, docID string) error {
	if docID == "" {
		return fmt.Errorf("delete %s: document id is required", collection)
	}
	_, err := s.client.Collection(collection).Doc(docID).Delete(ctx, firestore.Exists)
	if err != nil {
		return wrapError("delete", collection, docID, err)
	}
	return nil
}

// Query returns the documents whose field equals value.
func (s *FirestoreStore) Query(ctx context.Context, collection string, field string, value interface{}) ([]Document, error) {
	iter := s.client.Collection(collection).Where(field, "==", value).Documents(ctx)
	return s.collect(ctx, "query", collection, iter)
}

// Latest orders by field descending and lets Firestore apply the limit.
func (s *FirestoreStore) Latest(ctx context.Context, collection string, field string, limit int) ([]Document, error) {
	q := s.client.Collection(collection).OrderBy(field, firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return s.collect(ctx, "latest", collection, q.Documents(ctx))
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *FirestoreStore) collect(_ context.Context, op, collection string, iter *firestore.DocumentIterator) ([]Document, error) {
	defer iter.Stop()

	docs := make([]Document, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, wrapError(op, collection, "", err)
		}
		docs = append(docs, Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func wrapError(op, collection, docID string, err error) error {
	target := collection
	if docID != "" {
		target = collection + "/" + docID
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s %s: %w", op, target, ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s %s: %w", op, target, ErrAlreadyExists)
	}
	return fmt.Errorf("%s %s: %w", op, target, err)
}
