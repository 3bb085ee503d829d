package db

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/database"
)

// MigrationOptions tunes MigrateLegacy.
type MigrationOptions struct {
	// AllowDuplicates copies every legacy record even if a copy with the same originalId
	// already exists in the current collection.
	AllowDuplicates bool
}

// MigrationResult reports how many legacy records were copied and how many were skipped
// because a copy already existed.
type MigrationResult struct {
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
}

// ProductRepository resolves products across the current and legacy collections.
// Writes of new products only ever go to the current collection.
type ProductRepository struct {
	base
	source CatalogSource
}

// NewProductRepository creates a ProductRepository. A nil source defaults to the
// fallback strategy over the default collection names.
func NewProductRepository(store database.DocumentStore, source CatalogSource, logger *zap.Logger) *ProductRepository {
	b := newBase(store, logger)
	if source == nil {
		source = NewFallbackSource(DefaultCatalogCollections(), b.logger)
	}
	return &ProductRepository{base: b, source: source}
}

// Add validates the product, stamps createdAt/updatedAt and stores it in the current
// collection. The returned record carries the assigned id.
func (r *ProductRepository) Add(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product == nil {
		return nil, fmt.Errorf("add product: %w: product is required", models.ErrValidation)
	}
	if err := models.Validate(product); err != nil {
		return nil, fmt.Errorf("add product: %w", err)
	}

	record := *product
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Source = ""

	collection := r.source.Collections().Current
	id, err := r.store.Create(ctx, collection, record.Fields())
	if err != nil {
		r.logger.Error("Failed to add product", zap.String("collection", collection), zap.Error(err))
		return nil, fmt.Errorf("add product: %w", err)
	}
	record.ID = id
	r.logger.Debug("Product added", zap.String("collection", collection), zap.String("productId", id))
	return &record, nil
}

// List returns the catalog as decided by the configured source.
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	docs, err := r.source.List(ctx, r.store)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]*models.Product, 0, len(docs))
	for _, doc := range docs {
		product, err := decodeProduct(doc.Document, doc.Source)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		products = append(products, product)
	}
	r.logger.Debug("Products listed", zap.Int("count", len(products)))
	return products, nil
}

// Get reads one product, probing collections in the source's lookup order.
func (r *ProductRepository) Get(ctx context.Context, productID string) (*models.Product, error) {
	current := r.source.Collections().Current
	for _, collection := range r.source.LookupOrder() {
		doc, err := r.store.Get(ctx, collection, productID)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get product %q: %w", productID, err)
		}
		source := ""
		if collection != current {
			source = collection
		}
		return decodeProduct(doc, source)
	}
	return nil, fmt.Errorf("get product %q: %w", productID, database.ErrNotFound)
}

// Update applies a partial update and stamps updatedAt. The current collection is tried
// first; the legacy collection is tried only when the id is not found there.
func (r *ProductRepository) Update(ctx context.Context, productID string, patch models.ProductPatch) error {
	if err := models.Validate(patch); err != nil {
		return fmt.Errorf("update product %q: %w", productID, err)
	}
	fields := patch.Fields()
	fields["updatedAt"] = r.now()

	return r.withFallback("update", productID, func(collection string) error {
		return r.store.Update(ctx, collection, productID, fields)
	})
}

// Delete removes a product with the same fallback order as Update.
func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	return r.withFallback("delete", productID, func(collection string) error {
		return r.store.Delete(ctx, collection, productID)
	})
}

func (r *ProductRepository) withFallback(op, productID string, apply func(collection string) error) error {
	if productID == "" {
		return fmt.Errorf("%s product: %w: id is required", op, models.ErrValidation)
	}
	order := r.source.LookupOrder()
	for i, collection := range order {
		err := apply(collection)
		if err == nil {
			r.logger.Debug("Product written",
				zap.String("op", op), zap.String("collection", collection), zap.String("productId", productID))
			return nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			r.logger.Error("Product write failed",
				zap.String("op", op), zap.String("collection", collection), zap.String("productId", productID), zap.Error(err))
			return fmt.Errorf("%s product %q: %w", op, productID, err)
		}
		if i+1 < len(order) {
			r.logger.Info("Product not found, trying next collection",
				zap.String("op", op), zap.String("collection", collection), zap.String("next", order[i+1]), zap.String("productId", productID))
		}
	}
	return fmt.Errorf("%s product %q: %w", op, productID, database.ErrNotFound)
}

// MigrateLegacy copies every legacy record into the current collection with originalId and
// migratedAt set. Legacy records are left in place. Unless AllowDuplicates is set, records
// whose originalId is already present in the current collection are skipped. Creates are
// independent; on failure the counts so far are returned with the error.
func (r *ProductRepository) MigrateLegacy(ctx context.Context, opts MigrationOptions) (MigrationResult, error) {
	var result MigrationResult
	collections := r.source.Collections()

	migrated := make(map[string]struct{})
	if !opts.AllowDuplicates {
		existing, err := r.store.GetAll(ctx, collections.Current)
		if err != nil {
			return result, fmt.Errorf("migrate products: read %s: %w", collections.Current, err)
		}
		for _, doc := range existing {
			if originalID, ok := doc.Data["originalId"].(string); ok && originalID != "" {
				migrated[originalID] = struct{}{}
			}
		}
	}

	legacy, err := r.store.GetAll(ctx, collections.Legacy)
	if err != nil {
		return result, fmt.Errorf("migrate products: read %s: %w", collections.Legacy, err)
	}
	r.logger.Info("Starting catalog migration",
		zap.String("from", collections.Legacy), zap.String("to", collections.Current),
		zap.Int("legacyCount", len(legacy)), zap.Bool("allowDuplicates", opts.AllowDuplicates))

	for _, doc := range legacy {
		if _, done := migrated[doc.ID]; done {
			result.Skipped++
			continue
		}
		fields := make(map[string]interface{}, len(doc.Data)+2)
		for k, v := range doc.Data {
			fields[k] = v
		}
		fields["originalId"] = doc.ID
		fields["migratedAt"] = r.now()

		if _, err := r.store.Create(ctx, collections.Current, fields); err != nil {
			r.logger.Error("Catalog migration aborted",
				zap.String("originalId", doc.ID), zap.Int("migrated", result.Migrated), zap.Error(err))
			return result, fmt.Errorf("migrate product %q: %w", doc.ID, err)
		}
		result.Migrated++
	}

	r.logger.Info("Catalog migration complete",
		zap.Int("migrated", result.Migrated), zap.Int("skipped", result.Skipped))
	return result, nil
}

func decodeProduct(doc database.Document, source string) (*models.Product, error) {
	var product models.Product
	if err := database.Decode(doc, &product); err != nil {
		return nil, err
	}
	product.ID = doc.ID
	product.Source = source
	return &product, nil
}
