package db

import (
	"time"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/pkg/database"
)

// Collection names shared with the mobile and web clients.
const (
	ProductsCollection       = "products"
	LegacyProductsCollection = "foodItems"
	OrdersCollection         = "orders"
	UsersCollection          = "users"
	RestaurantsCollection    = "restaurants"
	AuditLogsCollection      = "auditLogs"
)

// base carries what every repository needs: the store, a logger and a clock.
type base struct {
	store  database.DocumentStore
	logger *zap.Logger
	now    func() time.Time
}

func newBase(store database.DocumentStore, logger *zap.Logger) base {
	if store == nil {
		panic("db: document store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return base{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the clock used to stamp createdAt/updatedAt. Tests use it to get
// deterministic timestamps.
func (b *base) SetClock(now func() time.Time) {
	if now != nil {
		b.now = now
	}
}
