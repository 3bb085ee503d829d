package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/database"
)

func newSeeder(store *database.MemoryStore) (*Seeder, *db.UserRepository) {
	logger := zap.NewNop()
	users := db.NewUserRepository(store, logger)
	userService := core.NewUserService(users, nil, "admin@fooddelivery.com", nil, logger)
	return NewSeeder(store, db.NewRestaurantRepository(store, logger), userService, db.DefaultCatalogCollections(), logger), users
}

func TestLoadShippedSeedFile(t *testing.T) {
	f, err := Load(filepath.Join("..", "..", "configs", "seed.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, f.Restaurants)
	assert.Equal(t, "restaurant_1", f.Restaurants[0].ID)
	assert.Equal(t, "Burger Palace", f.Restaurants[0].Name)
	require.NotNil(t, f.Restaurants[0].Location)

	names := map[string]float64{}
	for _, item := range f.FoodItems {
		names[item.Name] = item.Price
	}
	assert.Equal(t, 12.99, names["Classic Cheeseburger"])
	assert.Equal(t, 2.50, names["Cola"])
	assert.Equal(t, "admin@fooddelivery.com", f.Admin.Email)
}

func TestParseRejectsUnknownKeysAndMissingIDs(t *testing.T) {
	_, err := Parse([]byte("foodItem:\n  - name: typo\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("foodItems:\n  - name: Cola\n    price: 2.5\n    category: Beverages\n"))
	assert.ErrorContains(t, err, "has no id")
}

func TestRunSeedsLegacyCatalogAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	seeder, users := newSeeder(store)
	f, err := Parse([]byte(`
categories:
  - {id: burgers, name: Burgers, icon: hamburger}
restaurants:
  - id: restaurant_1
    name: Burger Palace
    rating: 4.2
    isOpen: true
foodItems:
  - {id: "1", name: Classic Cheeseburger, price: 12.99, category: Burgers}
  - {id: "4", name: Cola, price: 2.50, category: Beverages, available: false}
admin:
  email: admin@fooddelivery.com
  name: Admin
`))
	require.NoError(t, err)

	report, err := seeder.Run(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 1, report.CategoriesWritten)
	assert.Equal(t, 1, report.RestaurantsWritten)
	assert.Equal(t, 2, report.FoodItemsWritten)
	assert.Zero(t, report.Skipped)
	assert.True(t, report.AdminCreated)
	assert.Equal(t, Initialization{Categories: true, FoodItems: true, Restaurants: true}, report.Initialization)

	doc, err := store.Get(ctx, db.LegacyProductsCollection, "1")
	require.NoError(t, err)
	var burger models.Product
	require.NoError(t, database.Decode(doc, &burger))
	assert.Equal(t, "restaurant_1", burger.RestaurantID)
	assert.True(t, burger.Available)

	doc, err = store.Get(ctx, db.LegacyProductsCollection, "4")
	require.NoError(t, err)
	assert.Equal(t, false, doc.Data["available"])

	again, err := seeder.Run(ctx, f)
	require.NoError(t, err)
	assert.Zero(t, again.FoodItemsWritten)
	assert.Equal(t, 4, again.Skipped)
	assert.False(t, again.AdminCreated)

	admins, err := users.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestRunRejectsInvalidFoodItem(t *testing.T) {
	store := database.NewMemoryStore()
	seeder, _ := newSeeder(store)

	_, err := seeder.Run(context.Background(), &File{FoodItems: []FoodItem{{ID: "x", Name: "Free Lunch", Price: -1, Category: "Burgers"}}})
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Empty(t, store.Collections())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
