package firebase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/example/fooddelivery/internal/config"
)

// Clients bundles the Firebase Admin SDK clients the server uses.
type Clients struct {
	App        *firebase.App
	Firestore  *firestore.Client
	Auth       *auth.Client
	Bucket     *gcs.BucketHandle // nil when no storage bucket is configured
	BucketName string
}

// CredentialsOption picks the service account source: a credentials file, a base64 encoded
// JSON key, or nil for Application Default Credentials.
func CredentialsOption(cfg *config.Config) (option.ClientOption, error) {
	switch {
	case cfg.GoogleApplicationCredentials != "":
		return option.WithCredentialsFile(cfg.GoogleApplicationCredentials), nil
	case cfg.FirebaseServiceAccountJSONBase64 != "":
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, errors.New("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is not a valid base64 string")
		}
		return option.WithCredentialsJSON(jsonKey), nil
	default:
		return nil, nil
	}
}

// Init initializes the Firebase app and its Firestore, Auth and Storage clients.
func Init(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Clients, error) {
	if cfg == nil {
		return nil, errors.New("firebase: config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opt, err := CredentialsOption(cfg)
	if err != nil {
		return nil, err
	}
	opts := []option.ClientOption{}
	if opt != nil {
		opts = append(opts, opt)
	} else {
		logger.Info("Initializing Firebase using Application Default Credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.FirebaseProjectID,
		StorageBucket: cfg.FirebaseStorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	clients := &Clients{App: app}
	if clients.Firestore, err = app.Firestore(ctx); err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}
	if clients.Auth, err = app.Auth(ctx); err != nil {
		_ = clients.Close()
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	if cfg.FirebaseStorageBucket != "" {
		storageClient, err := app.Storage(ctx)
		if err != nil {
			_ = clients.Close()
			return nil, fmt.Errorf("app.Storage: %w", err)
		}
		if clients.Bucket, err = storageClient.DefaultBucket(); err != nil {
			_ = clients.Close()
			return nil, fmt.Errorf("default bucket: %w", err)
		}
		clients.BucketName = cfg.FirebaseStorageBucket
	} else {
		logger.Warn("FIREBASE_STORAGE_BUCKET not set, image uploads are disabled")
	}

	logger.Info("Firebase Admin SDK initialized", zap.String("projectId", cfg.FirebaseProjectID))
	return clients, nil
}

// Close releases the Firestore client.
func (c *Clients) Close() error {
	if c.Firestore != nil {
		return c.Firestore.Close()
	}
	return nil
}
