package core

import (
	"errors"
	"fmt"

	"github.com/example/fooddelivery/pkg/database"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderNotFound         = errors.New("order not found")
	ErrUserNotFound          = errors.New("user not found")
	ErrRestaurantNotFound    = errors.New("restaurant not found")
	ErrDuplicateEmail        = errors.New("a profile with this email already exists")
	ErrReservedEmail         = errors.New("this email is reserved")
	ErrForbidden             = errors.New("admin role required")
	ErrUnauthenticated       = errors.New("authentication required")
	ErrProfileRequired       = errors.New("register a profile first")
	ErrInvalidTransition     = errors.New("order status transition not allowed")
	ErrMigrationInProgress   = errors.New("a catalog migration is already running")
	ErrMigrationNotConfirmed = errors.New("catalog migration must be confirmed")
	ErrImagesDisabled        = errors.New("image storage is not configured")
)

// notFound translates a store not-found error into the entity's sentinel and passes every
// other error through.
func notFound(err error, sentinel error, id string) error {
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %s", sentinel, id)
	}
	return err
}
