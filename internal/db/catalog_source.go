package db

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/pkg/database"
)

// Catalog source modes accepted by NewCatalogSource.
const (
	CatalogSourceFallback = "fallback"
	CatalogSourceCurrent  = "current"
)

// CatalogCollections names the current and legacy product collections.
type CatalogCollections struct {
	Current string
	Legacy  string
}

// DefaultCatalogCollections returns the collection names used by the deployed clients.
func DefaultCatalogCollections() CatalogCollections {
	return CatalogCollections{Current: ProductsCollection, Legacy: LegacyProductsCollection}
}

// SourcedDocument is a catalog document together with the collection it was read from.
// Source is empty for the current collection.
type SourcedDocument struct {
	database.Document
	Source string
}

// CatalogSource decides which collections back catalog reads and in which order point
// lookups and writes probe them.
type CatalogSource interface {
	List(ctx context.Context, store database.DocumentStore) ([]SourcedDocument, error)
	LookupOrder() []string
	Collections() CatalogCollections
}

// NewCatalogSource builds the strategy named by mode.
func NewCatalogSource(mode string, collections CatalogCollections, logger *zap.Logger) (CatalogSource, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", CatalogSourceFallback:
		return NewFallbackSource(collections, logger), nil
	case CatalogSourceCurrent:
		return NewCurrentOnlySource(collections), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", mode)
	}
}

// FallbackSource serves the current collection, or the legacy one when current is empty.
// The two are never merged.
type FallbackSource struct {
	collections CatalogCollections
	logger      *zap.Logger
}

// NewFallbackSource creates a FallbackSource.
func NewFallbackSource(collections CatalogCollections, logger *zap.Logger) *FallbackSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackSource{collections: collections, logger: logger}
}

// List reads the current collection and falls back to the legacy one only if it is empty.
func (s *FallbackSource) List(ctx context.Context, store database.DocumentStore) ([]SourcedDocument, error) {
	current, err := store.GetAll(ctx, s.collections.Current)
	if err != nil {
		return nil, err
	}
	if len(current) > 0 {
		return tagDocuments(current, ""), nil
	}

	s.logger.Info("Current catalog is empty, reading legacy collection",
		zap.String("current", s.collections.Current), zap.String("legacy", s.collections.Legacy))
	legacy, err := store.GetAll(ctx, s.collections.Legacy)
	if err != nil {
		return nil, err
	}
	return tagDocuments(legacy, s.collections.Legacy), nil
}

// LookupOrder probes current first, then legacy.
func (s *FallbackSource) LookupOrder() []string {
	return []string{s.collections.Current, s.collections.Legacy}
}

func (s *FallbackSource) Collections() CatalogCollections { return s.collections }

// CurrentOnlySource ignores the legacy collection. It suits deployments that have
// completed the migration.
type CurrentOnlySource struct {
	collections CatalogCollections
}

// NewCurrentOnlySource creates a CurrentOnlySource.
func NewCurrentOnlySource(collections CatalogCollections) *CurrentOnlySource {
	return &CurrentOnlySource{collections: collections}
}

func (s *CurrentOnlySource) List(ctx context.Context, store database.DocumentStore) ([]SourcedDocument, error) {
	docs, err := store.GetAll(ctx, s.collections.Current)
	if err != nil {
		return nil, err
	}
	return tagDocuments(docs, ""), nil
}

func (s *CurrentOnlySource) LookupOrder() []string {
	return []string{s.collections.Current}
}

func (s *CurrentOnlySource) Collections() CatalogCollections { return s.collections }

func tagDocuments(docs []database.Document, source string) []SourcedDocument {
	out := make([]SourcedDocument, 0, len(docs))
	for _, doc := range docs {
		out = append(out, SourcedDocument{Document: doc, Source: source})
	}
	return out
}
