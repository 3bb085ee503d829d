package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/cache"
	"github.com/example/fooddelivery/pkg/storage"
)

func price(v float64) *float64 { return &v }

func TestCatalogAdminOperationsRequireAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	user := env.customer(t, "uid-1", "ana@example.com")

	_, err := env.catalog.AddProduct(ctx, user, models.CreateProductRequest{Name: "Burger", Price: price(10), Category: "Burgers"})
	assert.ErrorIs(t, err, ErrForbidden)

	err = env.catalog.DeleteProduct(ctx, user, "p1")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.catalog.MigrateLegacy(ctx, nil, MigrationRequest{Confirm: true})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCatalogProductLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	admin := env.admin(t)

	created, err := env.catalog.AddProduct(ctx, admin, models.CreateProductRequest{Name: "Burger", Price: price(10), Category: "Burgers"})
	require.NoError(t, err)
	assert.True(t, created.Available)

	newName := "Double Burger"
	updated, err := env.catalog.UpdateProduct(ctx, admin, created.ID, models.ProductPatch{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Double Burger", updated.Name)

	require.NoError(t, env.catalog.DeleteProduct(ctx, admin, created.ID))
	_, err = env.catalog.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	err = env.catalog.DeleteProduct(ctx, admin, created.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	logs, err := env.audit.ListAuditLogs(ctx, admin, 10)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, entry := range logs {
		actions = append(actions, entry.Action)
	}
	assert.ElementsMatch(t, []string{models.AuditProductCreate, models.AuditProductUpdate, models.AuditProductDelete}, actions)
}

func TestCatalogUpdateReachesLegacyProducts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	admin := env.admin(t)
	legacyID := env.seedLegacy(t, "Cola", 2.5, "Beverages")

	updated, err := env.catalog.UpdateProduct(ctx, admin, legacyID, models.ProductPatch{Price: price(3)})
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.Price)
	assert.Equal(t, db.LegacyProductsCollection, updated.Source)
}

func TestCatalogUploadProductImage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	admin := env.admin(t)
	created, err := env.catalog.AddProduct(ctx, admin, models.CreateProductRequest{Name: "Burger", Price: price(10), Category: "Burgers"})
	require.NoError(t, err)

	withImage, err := env.catalog.UploadProductImage(ctx, admin, created.ID, "burger.png", pngHeader)
	require.NoError(t, err)
	assert.Contains(t, withImage.ImageURL, "foodItems%2Ffood_item_"+created.ID+"_")
	assert.Equal(t, withImage.ImageURL, withImage.Image)

	_, err = env.catalog.UploadProductImage(ctx, admin, created.ID, "menu.pdf", []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, storage.ErrUnsupportedImage)

	_, err = env.catalog.UploadProductImage(ctx, admin, "missing", "burger.png", pngHeader)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogMigrationRequiresConfirmation(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.admin(t)
	env.seedLegacy(t, "Cola", 2.5, "Beverages")

	_, err := env.catalog.MigrateLegacy(context.Background(), admin, MigrationRequest{})
	assert.ErrorIs(t, err, ErrMigrationNotConfirmed)
}

func TestCatalogMigrationIsSerializedByLock(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	admin := env.admin(t)
	env.seedLegacy(t, "Classic Cheeseburger", 12.99, "Burgers")
	env.seedLegacy(t, "Cola", 2.5, "Beverages")

	held, err := cache.AcquireLock(ctx, env.locks, migrationLockKey, time.Minute)
	require.NoError(t, err)

	_, err = env.catalog.MigrateLegacy(ctx, admin, MigrationRequest{Confirm: true})
	assert.ErrorIs(t, err, ErrMigrationInProgress)
	require.NoError(t, held.Release(ctx))

	result, err := env.catalog.MigrateLegacy(ctx, admin, MigrationRequest{Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, db.MigrationResult{Migrated: 2}, result)

	again, err := env.catalog.MigrateLegacy(ctx, admin, MigrationRequest{Confirm: true})
	require.NoError(t, err)
	assert.Equal(t, db.MigrationResult{Skipped: 2}, again)

	dup, err := env.catalog.MigrateLegacy(ctx, admin, MigrationRequest{Confirm: true, AllowDuplicates: true})
	require.NoError(t, err)
	assert.Equal(t, 2, dup.Migrated)

	products, err := env.catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 4)

	relock, err := cache.AcquireLock(ctx, env.locks, migrationLockKey, time.Minute)
	require.NoError(t, err, "lock must be released after a migration")
	require.NoError(t, relock.Release(ctx))
}

func TestCatalogServiceWithoutImages(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.admin(t)
	svc := NewCatalogService(env.productRepo, nil, nil, nil, nil)

	_, err := svc.UploadProductImage(context.Background(), admin, "p1", "burger.png", pngHeader)
	assert.True(t, errors.Is(err, ErrImagesDisabled))
}
