package core

import (
	"fmt"
	"strings"

	"github.com/example/fooddelivery/internal/models"
)

// StatusPolicy decides whether an order may move from one status to another.
type StatusPolicy interface {
	Allow(from, to models.OrderStatus) error
	Name() string
}

// Policy names accepted by NewStatusPolicy.
const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

// NewStatusPolicy returns the policy with the given name.
func NewStatusPolicy(name string) (StatusPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyPermissive:
		return PermissivePolicy{}, nil
	case PolicyStrict:
		return StrictPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown order status policy %q", name)
	}
}

// PermissivePolicy accepts any known status from any other, as the admin tools always have.
type PermissivePolicy struct{}

func (PermissivePolicy) Allow(from, to models.OrderStatus) error { return nil }

func (PermissivePolicy) Name() string { return PolicyPermissive }

// StrictPolicy follows the delivery lifecycle:
// pending -> confirmed -> preparing -> out for delivery -> delivered -> completed.
// Out for delivery may also go straight to completed, and any non-terminal status may be
// cancelled. Setting the current status again is a no-op and always allowed.
type StrictPolicy struct{}

var strictTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:        {models.OrderStatusConfirmed},
	models.OrderStatusConfirmed:      {models.OrderStatusPreparing},
	models.OrderStatusPreparing:      {models.OrderStatusOutForDelivery},
	models.OrderStatusOutForDelivery: {models.OrderStatusDelivered, models.OrderStatusCompleted},
	models.OrderStatusDelivered:      {models.OrderStatusCompleted},
}

func (StrictPolicy) Allow(from, to models.OrderStatus) error {
	if from == to {
		return nil
	}
	if to == models.OrderStatusCancelled && !from.Terminal() {
		return nil
	}
	for _, next := range strictTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
}

func (StrictPolicy) Name() string { return PolicyStrict }
