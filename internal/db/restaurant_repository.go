package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/database"
)

// RestaurantRepository stores restaurants in the restaurants collection.
type RestaurantRepository struct {
	base
}

// NewRestaurantRepository creates a RestaurantRepository.
func NewRestaurantRepository(store database.DocumentStore, logger *zap.Logger) *RestaurantRepository {
	return &RestaurantRepository{base: newBase(store, logger)}
}

// Add stores a restaurant under a store-assigned id.
func (r *RestaurantRepository) Add(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error) {
	record, err := r.prepare(restaurant)
	if err != nil {
		return nil, err
	}
	id, err := r.store.Create(ctx, RestaurantsCollection, record.Fields())
	if err != nil {
		return nil, fmt.Errorf("add restaurant: %w", err)
	}
	record.ID = id
	return record, nil
}

// AddWithID stores a restaurant under a fixed id. It fails with database.ErrAlreadyExists
// when the id is taken.
func (r *RestaurantRepository) AddWithID(ctx context.Context, restaurantID string, restaurant *models.Restaurant) (*models.Restaurant, error) {
	record, err := r.prepare(restaurant)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, RestaurantsCollection, restaurantID, record.Fields()); err != nil {
		return nil, fmt.Errorf("add restaurant %q: %w", restaurantID, err)
	}
	record.ID = restaurantID
	return record, nil
}

func (r *RestaurantRepository) prepare(restaurant *models.Restaurant) (*models.Restaurant, error) {
	if restaurant == nil {
		return nil, fmt.Errorf("add restaurant: %w: restaurant is required", models.ErrValidation)
	}
	if err := models.Validate(restaurant); err != nil {
		return nil, fmt.Errorf("add restaurant: %w", err)
	}
	record := *restaurant
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	return &record, nil
}

// List returns every restaurant.
func (r *RestaurantRepository) List(ctx context.Context) ([]*models.Restaurant, error) {
	docs, err := r.store.GetAll(ctx, RestaurantsCollection)
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	restaurants := make([]*models.Restaurant, 0, len(docs))
	for _, doc := range docs {
		restaurant, err := decodeRestaurant(doc)
		if err != nil {
			return nil, fmt.Errorf("list restaurants: %w", err)
		}
		restaurants = append(restaurants, restaurant)
	}
	return restaurants, nil
}

// Get reads one restaurant.
func (r *RestaurantRepository) Get(ctx context.Context, restaurantID string) (*models.Restaurant, error) {
	doc, err := r.store.Get(ctx, RestaurantsCollection, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("get restaurant %q: %w", restaurantID, err)
	}
	return decodeRestaurant(doc)
}

// Update applies a partial update and stamps updatedAt.
func (r *RestaurantRepository) Update(ctx context.Context, restaurantID string, patch models.RestaurantPatch) error {
	if err := models.Validate(patch); err != nil {
		return fmt.Errorf("update restaurant %q: %w", restaurantID, err)
	}
	fields := patch.Fields()
	fields["updatedAt"] = r.now()
	if err := r.store.Update(ctx, RestaurantsCollection, restaurantID, fields); err != nil {
		return fmt.Errorf("update restaurant %q: %w", restaurantID, err)
	}
	return nil
}

// Delete removes a restaurant. Products referencing it are left as they are.
func (r *RestaurantRepository) Delete(ctx context.Context, restaurantID string) error {
	if err := r.store.Delete(ctx, RestaurantsCollection, restaurantID); err != nil {
		return fmt.Errorf("delete restaurant %q: %w", restaurantID, err)
	}
	return nil
}

func decodeRestaurant(doc database.Document) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := database.Decode(doc, &restaurant); err != nil {
		return nil, err
	}
	restaurant.ID = doc.ID
	return &restaurant, nil
}
