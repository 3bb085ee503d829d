package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedImage is returned for uploads that are not JPEG, PNG or GIF.
var ErrUnsupportedImage = errors.New("unsupported image format, use JPG, PNG or GIF")

// Folder is a top-level storage folder shared with the clients.
type Folder string

const (
	FolderFoodItems    Folder = "foodItems"
	FolderRestaurants  Folder = "restaurants"
	FolderCategories   Folder = "categories"
	FolderUserProfiles Folder = "userProfiles"
	FolderGeneral      Folder = "general"
)

// file name prefix per folder, e.g. food_item_<id>_<ms>.jpg
var filePrefixes = map[Folder]string{
	FolderFoodItems:    "food_item",
	FolderRestaurants:  "restaurant",
	FolderCategories:   "category",
	FolderUserProfiles: "profile",
	FolderGeneral:      "image",
}

var supportedExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

var supportedTypes = map[string]bool{"image/jpeg": true, "image/png": true, "image/gif": true}

// MaxImageSize bounds uploads accepted by ImageService.
const MaxImageSize = 5 << 20

// ValidateImage checks the file name extension and sniffs the content. It returns the detected
// content type and canonical extension.
func ValidateImage(fileName string, data []byte) (string, string, error) {
	ext := strings.ToLower(path.Ext(fileName))
	if fileName != "" && !supportedExtensions[ext] {
		return "", "", fmt.Errorf("%w: extension %q", ErrUnsupportedImage, ext)
	}
	if len(data) == 0 {
		return "", "", fmt.Errorf("%w: empty file", ErrUnsupportedImage)
	}
	if len(data) > MaxImageSize {
		return "", "", fmt.Errorf("%w: file exceeds %d bytes", ErrUnsupportedImage, MaxImageSize)
	}
	mt := mimetype.Detect(data)
	if !supportedTypes[mt.String()] {
		return "", "", fmt.Errorf("%w: detected %s", ErrUnsupportedImage, mt.String())
	}
	return mt.String(), mt.Extension(), nil
}

// ObjectName builds the storage path for an entity image.
func ObjectName(folder Folder, entityID string, ext string, at time.Time) string {
	prefix, ok := filePrefixes[folder]
	if !ok {
		prefix = "image"
	}
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%s_%s_%d%s", folder, prefix, entityID, at.UnixMilli(), ext)
}

// ImageService validates and uploads entity images.
type ImageService struct {
	store ObjectStore
	now   func() time.Time
}

// NewImageService creates an ImageService over store.
func NewImageService(store ObjectStore) *ImageService {
	return &ImageService{store: store, now: time.Now}
}

// Upload validates data and stores it under folder for entityID.
func (s *ImageService) Upload(ctx context.Context, folder Folder, entityID, fileName string, data []byte) (Object, error) {
	contentType, ext, err := ValidateImage(fileName, data)
	if err != nil {
		return Object{}, err
	}
	return s.store.Upload(ctx, ObjectName(folder, entityID, ext, s.now()), contentType, data)
}

// Delete removes an image by path.
func (s *ImageService) Delete(ctx context.Context, objectPath string) error {
	return s.store.Delete(ctx, objectPath)
}

// URL returns the download URL for objectPath, or "" if there is no such object.
func (s *ImageService) URL(ctx context.Context, objectPath string) (string, error) {
	u, err := s.store.URL(ctx, objectPath)
	if errors.Is(err, ErrObjectNotFound) {
		return "", nil
	}
	return u, err
}
