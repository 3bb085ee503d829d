package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/example/fooddelivery/internal/crypto"
)

// Store backends.
const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	LogLevel                         string `mapstructure:"LOG_LEVEL"`
	StoreBackend                     string `mapstructure:"STORE_BACKEND"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	FirebaseStorageBucket            string `mapstructure:"FIREBASE_STORAGE_BUCKET"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	EncryptionKey                    string `mapstructure:"ENCRYPTION_KEY"` // base64, 32 bytes
	AdminEmail                       string `mapstructure:"ADMIN_EMAIL"`
	CatalogSource                    string `mapstructure:"CATALOG_SOURCE"`
	ProductsCollection               string `mapstructure:"PRODUCTS_COLLECTION"`
	LegacyProductsCollection         string `mapstructure:"LEGACY_PRODUCTS_COLLECTION"`
	OrderStatusPolicy                string `mapstructure:"ORDER_STATUS_POLICY"`
	RedisAddr                        string `mapstructure:"REDIS_ADDR"`
	RedisPassword                    string `mapstructure:"REDIS_PASSWORD"`
	RedisDB                          int    `mapstructure:"REDIS_DB"`
	AMQPURL                          string `mapstructure:"AMQP_URL"`
	OrderEventsQueue                 string `mapstructure:"ORDER_EVENTS_QUEUE"`
	SMTPHost                         string `mapstructure:"SMTP_HOST"`
	SMTPPort                         int    `mapstructure:"SMTP_PORT"`
	SMTPUser                         string `mapstructure:"SMTP_USER"`
	SMTPPass                         string `mapstructure:"SMTP_PASS"`
	MailFrom                         string `mapstructure:"MAIL_FROM"`
	SeedPath                         string `mapstructure:"SEED_PATH"`
}

var defaults = map[string]interface{}{
	"PORT":                       "8080",
	"GIN_MODE":                   "debug",
	"LOG_LEVEL":                  "info",
	"STORE_BACKEND":              StoreFirestore,
	"ADMIN_EMAIL":                "admin@fooddelivery.com",
	"CATALOG_SOURCE":             "fallback",
	"PRODUCTS_COLLECTION":        "products",
	"LEGACY_PRODUCTS_COLLECTION": "foodItems",
	"ORDER_STATUS_POLICY":        "permissive",
	"REDIS_DB":                   0,
	"ORDER_EVENTS_QUEUE":         "order-events",
	"SMTP_PORT":                  2525,
	"MAIL_FROM":                  "orders@fooddelivery.com",
	"SEED_PATH":                  "configs/seed.yaml",
}

var keys = []string{
	"PORT", "GIN_MODE", "LOG_LEVEL", "STORE_BACKEND",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"FIREBASE_STORAGE_BUCKET", "CLIENT_URL", "ENCRYPTION_KEY", "ADMIN_EMAIL",
	"CATALOG_SOURCE", "PRODUCTS_COLLECTION", "LEGACY_PRODUCTS_COLLECTION", "ORDER_STATUS_POLICY",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "AMQP_URL", "ORDER_EVENTS_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "MAIL_FROM", "SEED_PATH",
}

// LoadConfig loads configuration from environment variables using Viper. Outside release mode
// a .env file in the working directory is loaded first. If CONFIG_PATH points to a YAML file,
// its values sit below the environment.
func LoadConfig() (*Config, error) {
	if !strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	return load(viper.New(), os.Getenv("CONFIG_PATH"))
}

func load(v *viper.Viper, configPath string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and enumerated values.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case StoreFirestore:
		if c.FirebaseProjectID == "" {
			errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required for the firestore backend"))
		}
	case StoreMemory:
		if c.IsRelease() {
			errs = append(errs, errors.New("the memory backend cannot run in release mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q", StoreFirestore, StoreMemory))
	}

	if _, err := crypto.KeyFromBase64(c.EncryptionKey); err != nil {
		errs = append(errs, fmt.Errorf("ENCRYPTION_KEY: %w", err))
	}
	switch c.CatalogSource {
	case "fallback", "current":
	default:
		errs = append(errs, errors.New("CATALOG_SOURCE must be fallback or current"))
	}
	switch c.OrderStatusPolicy {
	case "permissive", "strict":
	default:
		errs = append(errs, errors.New("ORDER_STATUS_POLICY must be permissive or strict"))
	}
	if c.ProductsCollection == "" || c.LegacyProductsCollection == "" {
		errs = append(errs, errors.New("product collection names cannot be empty"))
	} else if c.ProductsCollection == c.LegacyProductsCollection {
		errs = append(errs, errors.New("PRODUCTS_COLLECTION and LEGACY_PRODUCTS_COLLECTION must differ"))
	}
	if c.AdminEmail == "" {
		errs = append(errs, errors.New("ADMIN_EMAIL is required"))
	}

	return errors.Join(errs...)
}

// IsRelease reports whether the server runs in gin release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}
