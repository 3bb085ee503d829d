package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/cache"
	"github.com/example/fooddelivery/pkg/storage"
)

const (
	migrationLockKey = "lock:catalog-migration"
	migrationLockTTL = 10 * time.Minute
)

// MigrationRequest is the admin request to migrate the legacy catalog. Confirm replaces
// the confirmation prompt of the admin tools and must be true.
type MigrationRequest struct {
	Confirm         bool `json:"confirm"`
	AllowDuplicates bool `json:"allowDuplicates"`
}

type catalogService struct {
	products db.ProductStore
	images   *storage.ImageService
	locks    cache.Cache
	audit    AuditService
	logger   *zap.Logger
}

// NewCatalogService creates a CatalogService. images may be nil when no bucket is
// configured; locks defaults to an in-process cache.
func NewCatalogService(products db.ProductStore, images *storage.ImageService, locks cache.Cache, audit AuditService, logger *zap.Logger) CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = cache.NewMemoryCache()
	}
	return &catalogService{products: products, images: images, locks: locks, audit: audit, logger: logger}
}

func (s *catalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return s.products.List(ctx)
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound, productID)
	}
	return product, nil
}

func (s *catalogService) AddProduct(ctx context.Context, sess *Session, req models.CreateProductRequest) (*models.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	product, err := s.products.Add(ctx, req.Product())
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, s.logger, sess, models.AuditProductCreate, "PRODUCT", product.ID,
		map[string]interface{}{"name": product.Name})
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, sess *Session, productID string, patch models.ProductPatch) (*models.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, productID, patch); err != nil {
		return nil, notFound(err, ErrProductNotFound, productID)
	}
	record(ctx, s.audit, s.logger, sess, models.AuditProductUpdate, "PRODUCT", productID, nil)
	return s.GetProduct(ctx, productID)
}

func (s *catalogService) DeleteProduct(ctx context.Context, sess *Session, productID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, productID); err != nil {
		return notFound(err, ErrProductNotFound, productID)
	}
	record(ctx, s.audit, s.logger, sess, models.AuditProductDelete, "PRODUCT", productID, nil)
	return nil
}

// UploadProductImage stores the image under the foodItems folder and points both image
// fields of the product at its download URL.
func (s *catalogService) UploadProductImage(ctx context.Context, sess *Session, productID, fileName string, data []byte) (*models.Product, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, ErrImagesDisabled
	}
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	obj, err := s.images.Upload(ctx, storage.FolderFoodItems, productID, fileName, data)
	if err != nil {
		return nil, err
	}
	patch := models.ProductPatch{Image: &obj.URL, ImageURL: &obj.URL}
	if err := s.products.Update(ctx, productID, patch); err != nil {
		if cleanupErr := s.images.Delete(ctx, obj.Path); cleanupErr != nil {
			s.logger.Warn("Failed to remove orphaned image", zap.String("path", obj.Path), zap.Error(cleanupErr))
		}
		return nil, notFound(err, ErrProductNotFound, productID)
	}
	record(ctx, s.audit, s.logger, sess, models.AuditProductImage, "PRODUCT", productID,
		map[string]interface{}{"path": obj.Path})
	return s.GetProduct(ctx, productID)
}

func (s *catalogService) MigrateLegacy(ctx context.Context, sess *Session, req MigrationRequest) (db.MigrationResult, error) {
	if err := requireAdmin(sess); err != nil {
		return db.MigrationResult{}, err
	}
	if !req.Confirm {
		return db.MigrationResult{}, ErrMigrationNotConfirmed
	}

	lock, err := cache.AcquireLock(ctx, s.locks, migrationLockKey, migrationLockTTL)
	if errors.Is(err, cache.ErrLockHeld) {
		return db.MigrationResult{}, ErrMigrationInProgress
	}
	if err != nil {
		return db.MigrationResult{}, fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		// Release with a fresh context so a cancelled request still frees the lock.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			s.logger.Warn("Failed to release migration lock", zap.Error(err))
		}
	}()

	result, err := s.products.MigrateLegacy(ctx, db.MigrationOptions{AllowDuplicates: req.AllowDuplicates})
	details := map[string]interface{}{
		"migrated":        result.Migrated,
		"skipped":         result.Skipped,
		"allowDuplicates": req.AllowDuplicates,
	}
	if err != nil {
		details["error"] = err.Error()
	}
	record(ctx, s.audit, s.logger, sess, models.AuditCatalogMigrate, "CATALOG", "", details)
	return result, err
}
