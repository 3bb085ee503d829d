// Package app assembles the backends, repositories and services shared by the server, the
// seeder and the notifier.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/api"
	"github.com/example/fooddelivery/internal/config"
	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/crypto"
	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/firebase"
	"github.com/example/fooddelivery/internal/middleware"
	"github.com/example/fooddelivery/internal/notify"
	"github.com/example/fooddelivery/internal/seed"
	"github.com/example/fooddelivery/pkg/cache"
	"github.com/example/fooddelivery/pkg/database"
	"github.com/example/fooddelivery/pkg/mailer"
	"github.com/example/fooddelivery/pkg/messagequeue"
	"github.com/example/fooddelivery/pkg/storage"
)

const memoryQueueSize = 256

// App holds everything built from a Config.
type App struct {
	Config      *config.Config
	Store       database.DocumentStore
	Cache       cache.Cache
	Queue       messagequeue.MessageQueue
	Verifier    middleware.TokenVerifier
	Collections db.CatalogCollections

	Products    *db.ProductRepository
	Orders      *db.OrderRepository
	Users       *db.UserRepository
	Restaurants *db.RestaurantRepository

	Services api.Services

	firebase *firebase.Clients
	logger   *zap.Logger
}

// New connects the configured backends and builds the service layer. The memory backend
// keeps everything in process and accepts "uid:email" bearer tokens.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, logger: logger}

	var objects storage.ObjectStore
	switch cfg.StoreBackend {
	case config.StoreMemory:
		if cfg.IsRelease() {
			return nil, errors.New("app: the memory backend cannot run in release mode")
		}
		a.Store = database.NewMemoryStore()
		a.Verifier = middleware.DevTokenVerifier{}
		objects = storage.NewMemoryStore("local")
		logger.Warn("Using the in-memory store; data is lost on exit and tokens are not verified")
	case config.StoreFirestore:
		clients, err := firebase.Init(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		a.firebase = clients
		store, err := database.NewFirestoreStore(clients.Firestore, logger)
		if err != nil {
			_ = clients.Close()
			return nil, err
		}
		a.Store = store
		a.Verifier = clients.Auth
		if clients.Bucket != nil {
			bucket, err := storage.NewBucketStore(clients.Bucket, clients.BucketName, logger)
			if err != nil {
				_ = clients.Close()
				return nil, err
			}
			objects = bucket
		}
	default:
		return nil, fmt.Errorf("app: unknown store backend %q", cfg.StoreBackend)
	}

	if err := a.connect(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	if err := a.build(objects); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, a.logger)
		if err != nil {
			return err
		}
		a.Cache = redisCache
	} else {
		a.Cache = cache.NewMemoryCache()
		a.logger.Info("REDIS_ADDR not set, migration locks are process-local")
	}

	if cfg.AMQPURL != "" {
		rabbit, err := messagequeue.NewRabbitMQService(messagequeue.RabbitMQConfig{URL: cfg.AMQPURL}, a.logger)
		if err != nil {
			return err
		}
		a.Queue = rabbit
	} else {
		a.Queue = messagequeue.NewMemoryQueue(memoryQueueSize)
		a.logger.Info("AMQP_URL not set, order events stay in process")
	}
	return nil
}

func (a *App) build(objects storage.ObjectStore) error {
	cfg := a.Config
	key, err := crypto.KeyFromBase64(cfg.EncryptionKey)
	if err != nil {
		return fmt.Errorf("encryption key: %w", err)
	}
	cipher, err := crypto.NewCipher(key)
	if err != nil {
		return err
	}
	policy, err := core.NewStatusPolicy(cfg.OrderStatusPolicy)
	if err != nil {
		return err
	}

	a.Collections = db.CatalogCollections{Current: cfg.ProductsCollection, Legacy: cfg.LegacyProductsCollection}
	source, err := db.NewCatalogSource(cfg.CatalogSource, a.Collections, a.logger)
	if err != nil {
		return err
	}

	a.Products = db.NewProductRepository(a.Store, source, a.logger)
	a.Orders = db.NewOrderRepository(a.Store, a.logger)
	a.Users = db.NewUserRepository(a.Store, a.logger)
	a.Restaurants = db.NewRestaurantRepository(a.Store, a.logger)

	var images *storage.ImageService
	if objects != nil {
		images = storage.NewImageService(objects)
	}

	publisher := core.NewNoopPublisher()
	if a.HasEventConsumer() {
		publisher = core.NewQueuePublisher(a.Queue, cfg.OrderEventsQueue)
	} else {
		a.logger.Info("No order event consumer configured, order events are dropped")
	}

	audit := core.NewAuditService(db.NewAuditRepository(a.Store, a.logger), a.logger)
	a.Services = api.Services{
		Catalog:     core.NewCatalogService(a.Products, images, a.Cache, audit, a.logger),
		Orders:      core.NewOrderService(a.Orders, policy, publisher, audit, a.logger),
		Users:       core.NewUserService(a.Users, cipher, cfg.AdminEmail, audit, a.logger),
		Restaurants: core.NewRestaurantService(a.Restaurants, images, audit, a.logger),
		Dashboard:   core.NewDashboardService(a.Products, a.Orders, a.Users),
		Audit:       audit,
	}
	return nil
}

// HasEventConsumer reports whether anything will read order events: a broker consumed by
// the notifier binary, or the in-process notifier the server starts when SMTP is set.
func (a *App) HasEventConsumer() bool {
	if _, inProcess := a.Queue.(*messagequeue.MemoryQueue); inProcess {
		return a.Config.SMTPHost != ""
	}
	return a.Queue != nil
}

// AuthMiddleware builds the token middleware over the configured verifier.
func (a *App) AuthMiddleware() *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(a.Verifier, a.Services.Users, a.logger)
}

// Seeder builds a seeder writing into the configured collections.
func (a *App) Seeder() *seed.Seeder {
	return seed.NewSeeder(a.Store, a.Restaurants, a.Services.Users, a.Collections, a.logger)
}

// Notifier builds the order mail notifier from the SMTP settings.
func (a *App) Notifier() (*notify.Notifier, error) {
	sender, err := mailer.NewSMTPMailer(mailer.Config{
		Host:     a.Config.SMTPHost,
		Port:     a.Config.SMTPPort,
		Username: a.Config.SMTPUser,
		Password: a.Config.SMTPPass,
		From:     a.Config.MailFrom,
	})
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	return notify.NewNotifier(a.Users, sender, a.logger), nil
}

// Close releases the queue, the cache and the store in that order.
func (a *App) Close() error {
	var errs []error
	if a.Queue != nil {
		errs = append(errs, a.Queue.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	} else if a.firebase != nil {
		errs = append(errs, a.firebase.Close())
	}
	return errors.Join(errs...)
}
