package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/storage"
)

type restaurantService struct {
	restaurants db.RestaurantStore
	images      *storage.ImageService
	audit       AuditService
	logger      *zap.Logger
}

// NewRestaurantService creates a RestaurantService. images may be nil.
func NewRestaurantService(restaurants db.RestaurantStore, images *storage.ImageService, audit AuditService, logger *zap.Logger) RestaurantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &restaurantService{restaurants: restaurants, images: images, audit: audit, logger: logger}
}

func (s *restaurantService) ListRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	return s.restaurants.List(ctx)
}

func (s *restaurantService) GetRestaurant(ctx context.Context, restaurantID string) (*models.Restaurant, error) {
	restaurant, err := s.restaurants.Get(ctx, restaurantID)
	if err != nil {
		return nil, notFound(err, ErrRestaurantNotFound, restaurantID)
	}
	return restaurant, nil
}

func (s *restaurantService) AddRestaurant(ctx context.Context, sess *Session, restaurant *models.Restaurant) (*models.Restaurant, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	created, err := s.restaurants.Add(ctx, restaurant)
	if err != nil {
		return nil, err
	}
	record(ctx, s.audit, s.logger, sess, models.AuditRestaurantCreate, "RESTAURANT", created.ID,
		map[string]interface{}{"name": created.Name})
	return created, nil
}

func (s *restaurantService) UpdateRestaurant(ctx context.Context, sess *Session, restaurantID string, patch models.RestaurantPatch) (*models.Restaurant, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if err := s.restaurants.Update(ctx, restaurantID, patch); err != nil {
		return nil, notFound(err, ErrRestaurantNotFound, restaurantID)
	}
	record(ctx, s.audit, s.logger, sess, models.AuditRestaurantUpdate, "RESTAURANT", restaurantID, nil)
	return s.GetRestaurant(ctx, restaurantID)
}

func (s *restaurantService) DeleteRestaurant(ctx context.Context, sess *Session, restaurantID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.restaurants.Delete(ctx, restaurantID); err != nil {
		return notFound(err, ErrRestaurantNotFound, restaurantID)
	}
	record(ctx, s.audit, s.logger, sess, models.AuditRestaurantDelete, "RESTAURANT", restaurantID, nil)
	return nil
}

func (s *restaurantService) UploadRestaurantImage(ctx context.Context, sess *Session, restaurantID, fileName string, data []byte) (*models.Restaurant, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, ErrImagesDisabled
	}
	if _, err := s.GetRestaurant(ctx, restaurantID); err != nil {
		return nil, err
	}
	obj, err := s.images.Upload(ctx, storage.FolderRestaurants, restaurantID, fileName, data)
	if err != nil {
		return nil, err
	}
	if err := s.restaurants.Update(ctx, restaurantID, models.RestaurantPatch{Image: &obj.URL}); err != nil {
		return nil, notFound(err, ErrRestaurantNotFound, restaurantID)
	}
	record(ctx, s.audit, s.logger, sess, models.AuditRestaurantUpdate, "RESTAURANT", restaurantID,
		map[string]interface{}{"image": obj.Path})
	return s.GetRestaurant(ctx, restaurantID)
}
