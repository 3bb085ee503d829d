package models

import "time"

// Audit actions recorded for admin operations.
const (
	AuditProductCreate    = "PRODUCT_CREATE"
	AuditProductUpdate    = "PRODUCT_UPDATE"
	AuditProductDelete    = "PRODUCT_DELETE"
	AuditProductImage     = "PRODUCT_IMAGE_UPLOAD"
	AuditCatalogMigrate   = "CATALOG_MIGRATE"
	AuditOrderStatus      = "ORDER_STATUS_UPDATE"
	AuditOrderDelete      = "ORDER_DELETE"
	AuditUserUpdate       = "USER_UPDATE"
	AuditUserDelete       = "USER_DELETE"
	AuditRestaurantCreate = "RESTAURANT_CREATE"
	AuditRestaurantUpdate = "RESTAURANT_UPDATE"
	AuditRestaurantDelete = "RESTAURANT_DELETE"
)

// AuditLog represents an audit trail event.
type AuditLog struct {
	ID         string                 `json:"id" firestore:"-"`
	Timestamp  time.Time              `json:"timestamp" firestore:"timestamp"`
	UserID     string                 `json:"userId" firestore:"userId"` // who performed the action
	Action     string                 `json:"action" firestore:"action" validate:"required"`
	TargetType string                 `json:"targetType,omitempty" firestore:"targetType,omitempty"` // e.g. "PRODUCT", "ORDER"
	TargetID   string                 `json:"targetId,omitempty" firestore:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" firestore:"details,omitempty"`
}

// Fields returns the document representation of the entry.
func (a *AuditLog) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"timestamp": a.Timestamp,
		"userId":    a.UserID,
		"action":    a.Action,
	}
	if a.TargetType != "" {
		fields["targetType"] = a.TargetType
	}
	if a.TargetID != "" {
		fields["targetId"] = a.TargetID
	}
	if len(a.Details) > 0 {
		fields["details"] = a.Details
	}
	return fields
}
