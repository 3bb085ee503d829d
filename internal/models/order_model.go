package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out for delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are expected from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCompleted || s == OrderStatusCancelled
}

// OrderItem is a line of an order. Name and price are copied from the product at order time.
type OrderItem struct {
	ProductID string  `json:"productId,omitempty" firestore:"productId,omitempty"`
	Name      string  `json:"name" firestore:"name" validate:"required"`
	Quantity  int     `json:"quantity" firestore:"quantity" validate:"gte=1"`
	Price     float64 `json:"price" firestore:"price" validate:"gte=0"`
}

// Order is a customer order.
type Order struct {
	ID              string      `json:"id" firestore:"-"`
	UserID          string      `json:"userId" firestore:"userId" validate:"required"`
	Items           []OrderItem `json:"items" firestore:"items" validate:"required,min=1,dive"`
	Total           float64     `json:"total" firestore:"total" validate:"gte=0"`
	Status          OrderStatus `json:"status" firestore:"status" validate:"orderstatus"`
	DeliveryAddress string      `json:"deliveryAddress,omitempty" firestore:"deliveryAddress,omitempty"`
	CreatedAt       time.Time   `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt" firestore:"updatedAt"`
}

// Fields returns the document representation of the order.
func (o *Order) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"userId":    o.UserID,
		"items":     itemsToValues(o.Items),
		"total":     o.Total,
		"status":    string(o.Status),
		"createdAt": o.CreatedAt,
		"updatedAt": o.UpdatedAt,
	}
	if o.DeliveryAddress != "" {
		fields["deliveryAddress"] = o.DeliveryAddress
	}
	return fields
}

// ItemsTotal sums price times quantity over the order lines.
func ItemsTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// OrderPatch is a partial order update.
type OrderPatch struct {
	Items           *[]OrderItem `json:"items,omitempty" validate:"omitnil,min=1,dive"`
	Total           *float64     `json:"total,omitempty" validate:"omitnil,gte=0"`
	Status          *OrderStatus `json:"status,omitempty" validate:"omitnil,orderstatus"`
	DeliveryAddress *string      `json:"deliveryAddress,omitempty"`
}

// Fields returns only the fields set on the patch.
func (p OrderPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Items != nil {
		fields["items"] = itemsToValues(*p.Items)
	}
	setFloat(fields, "total", p.Total)
	if p.Status != nil {
		fields["status"] = string(*p.Status)
	}
	setString(fields, "deliveryAddress", p.DeliveryAddress)
	return fields
}

// CreateOrderRequest is the payload for placing an order. Total is computed from the items
// only when omitted.
type CreateOrderRequest struct {
	Items           []OrderItem `json:"items" binding:"required"`
	Total           *float64    `json:"total,omitempty"`
	DeliveryAddress string      `json:"deliveryAddress,omitempty"`
}

// UpdateOrderStatusRequest is the payload for changing an order's status.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

func itemsToValues(items []OrderItem) []interface{} {
	out := make([]interface{}, 0, len(items))
	for _, item := range items {
		value := map[string]interface{}{
			"name":     item.Name,
			"quantity": int64(item.Quantity),
			"price":    item.Price,
		}
		if item.ProductID != "" {
			value["productId"] = item.ProductID
		}
		out = append(out, value)
	}
	return out
}
