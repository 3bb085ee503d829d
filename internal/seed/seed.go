// Package seed loads the initial catalog, restaurants and admin profile into a fresh
// project and reports which collections hold data.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/database"
)

// CategoriesCollection holds the menu categories shown by the clients.
const CategoriesCollection = "categories"

// File is the seed file layout.
type File struct {
	Categories  []Category   `yaml:"categories"`
	Restaurants []Restaurant `yaml:"restaurants"`
	FoodItems   []FoodItem   `yaml:"foodItems"`
	Admin       Admin        `yaml:"admin"`
}

type Category struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type Restaurant struct {
	ID           string           `yaml:"id"`
	Name         string           `yaml:"name"`
	Address      string           `yaml:"address"`
	Rating       float64          `yaml:"rating"`
	DeliveryTime string           `yaml:"deliveryTime"`
	Image        string           `yaml:"image"`
	CuisineType  string           `yaml:"cuisineType"`
	IsOpen       bool             `yaml:"isOpen"`
	Location     *models.Location `yaml:"location"`
}

type FoodItem struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	Price        float64        `yaml:"price"`
	Category     string         `yaml:"category"`
	Image        string         `yaml:"image"`
	RestaurantID string         `yaml:"restaurantId"`
	Rating       float64        `yaml:"rating"`
	Available    *bool          `yaml:"available"`
	Sides        []string       `yaml:"sides"`
	Extras       []models.Extra `yaml:"extras"`
}

type Admin struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document. Unknown keys are rejected so typos do not silently drop data.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i, item := range f.FoodItems {
		if item.ID == "" {
			return nil, fmt.Errorf("parse seed file: food item %d (%q) has no id", i, item.Name)
		}
	}
	for i, r := range f.Restaurants {
		if r.ID == "" {
			return nil, fmt.Errorf("parse seed file: restaurant %d (%q) has no id", i, r.Name)
		}
	}
	return &f, nil
}

// Report summarizes a seeding run. Existing documents are never overwritten and count as
// skipped.
type Report struct {
	CategoriesWritten  int            `json:"categoriesWritten"`
	RestaurantsWritten int            `json:"restaurantsWritten"`
	FoodItemsWritten   int            `json:"foodItemsWritten"`
	Skipped            int            `json:"skipped"`
	AdminCreated       bool           `json:"adminCreated"`
	Initialization     Initialization `json:"initialization"`
}

// Initialization reports which collections hold at least one document.
type Initialization struct {
	Categories  bool `json:"categoriesInitialized"`
	FoodItems   bool `json:"foodItemsInitialized"`
	Products    bool `json:"productsInitialized"`
	Restaurants bool `json:"restaurantsInitialized"`
}

// Seeder writes a seed file into the store.
type Seeder struct {
	store       database.DocumentStore
	restaurants db.RestaurantStore
	users       core.UserService
	collections db.CatalogCollections
	logger      *zap.Logger
	now         func() time.Time
}

func NewSeeder(store database.DocumentStore, restaurants db.RestaurantStore, users core.UserService, collections db.CatalogCollections, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		store:       store,
		restaurants: restaurants,
		users:       users,
		collections: collections,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds categories, restaurants, food items and the admin profile in that order.
func (s *Seeder) Run(ctx context.Context, f *File) (*Report, error) {
	report := &Report{}

	for _, c := range f.Categories {
		written, err := s.put(ctx, CategoriesCollection, c.ID, map[string]interface{}{
			"name":      c.Name,
			"icon":      c.Icon,
			"createdAt": s.now(),
		})
		if err != nil {
			return report, err
		}
		report.count(written, &report.CategoriesWritten)
	}

	defaultRestaurant := ""
	for _, r := range f.Restaurants {
		if defaultRestaurant == "" {
			defaultRestaurant = r.ID
		}
		_, err := s.restaurants.AddWithID(ctx, r.ID, &models.Restaurant{
			Name:         r.Name,
			Address:      r.Address,
			Rating:       r.Rating,
			DeliveryTime: r.DeliveryTime,
			Image:        r.Image,
			CuisineType:  r.CuisineType,
			IsOpen:       r.IsOpen,
			Location:     r.Location,
		})
		switch {
		case errors.Is(err, database.ErrAlreadyExists):
			report.count(false, &report.RestaurantsWritten)
		case err != nil:
			return report, fmt.Errorf("seed restaurant %q: %w", r.ID, err)
		default:
			report.count(true, &report.RestaurantsWritten)
		}
	}

	for _, item := range f.FoodItems {
		product := item.product(defaultRestaurant, s.now())
		if err := models.Validate(product); err != nil {
			return report, fmt.Errorf("seed food item %q: %w", item.ID, err)
		}
		written, err := s.put(ctx, s.collections.Legacy, item.ID, product.Fields())
		if err != nil {
			return report, err
		}
		report.count(written, &report.FoodItemsWritten)
	}

	if f.Admin.Email != "" {
		admin, created, err := s.users.EnsureAdmin(ctx, f.Admin.Email, f.Admin.Name)
		if err != nil {
			return report, fmt.Errorf("seed admin: %w", err)
		}
		report.AdminCreated = created
		s.logger.Info("Admin profile checked", zap.String("userId", admin.ID), zap.Bool("created", created))
	}

	state, err := s.CheckInitialization(ctx)
	if err != nil {
		return report, err
	}
	report.Initialization = state
	s.logger.Info("Seeding complete",
		zap.Int("categories", report.CategoriesWritten),
		zap.Int("restaurants", report.RestaurantsWritten),
		zap.Int("foodItems", report.FoodItemsWritten),
		zap.Int("skipped", report.Skipped))
	return report, nil
}

// CheckInitialization reports which collections already hold data.
func (s *Seeder) CheckInitialization(ctx context.Context) (Initialization, error) {
	var state Initialization
	checks := []struct {
		collection string
		target     *bool
	}{
		{CategoriesCollection, &state.Categories},
		{s.collections.Legacy, &state.FoodItems},
		{s.collections.Current, &state.Products},
		{db.RestaurantsCollection, &state.Restaurants},
	}
	for _, check := range checks {
		docs, err := s.store.GetAll(ctx, check.collection)
		if err != nil {
			return state, fmt.Errorf("check %s: %w", check.collection, err)
		}
		*check.target = len(docs) > 0
	}
	return state, nil
}

func (s *Seeder) put(ctx context.Context, collection, id string, data map[string]interface{}) (bool, error) {
	err := s.store.Set(ctx, collection, id, data)
	if errors.Is(err, database.ErrAlreadyExists) {
		s.logger.Debug("Seed document exists, skipping", zap.String("collection", collection), zap.String("id", id))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed %s/%s: %w", collection, id, err)
	}
	return true, nil
}

func (r *Report) count(written bool, counter *int) {
	if written {
		*counter++
	} else {
		r.Skipped++
	}
}

func (item FoodItem) product(defaultRestaurant string, now time.Time) *models.Product {
	p := &models.Product{
		Name:         item.Name,
		Description:  item.Description,
		Price:        item.Price,
		Category:     item.Category,
		Image:        item.Image,
		RestaurantID: item.RestaurantID,
		Rating:       item.Rating,
		Available:    true,
		Sides:        item.Sides,
		Extras:       item.Extras,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.RestaurantID == "" {
		p.RestaurantID = defaultRestaurant
	}
	if item.Available != nil {
		p.Available = *item.Available
	}
	return p
}
