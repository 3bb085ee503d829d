package models

import "time"

// Location is a geographic point.
type Location struct {
	Latitude  float64 `json:"latitude" firestore:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" firestore:"longitude" validate:"gte=-180,lte=180"`
}

// Restaurant is a venue products may reference through their restaurantId.
type Restaurant struct {
	ID           string    `json:"id" firestore:"-"`
	Name         string    `json:"name" firestore:"name" validate:"required"`
	Address      string    `json:"address" firestore:"address"`
	Rating       float64   `json:"rating" firestore:"rating" validate:"gte=0,lte=5"`
	DeliveryTime string    `json:"deliveryTime,omitempty" firestore:"deliveryTime,omitempty"`
	Image        string    `json:"image,omitempty" firestore:"image,omitempty"`
	CuisineType  string    `json:"cuisineType,omitempty" firestore:"cuisineType,omitempty"`
	IsOpen       bool      `json:"isOpen" firestore:"isOpen"`
	Location     *Location `json:"location,omitempty" firestore:"location,omitempty"`
	CreatedAt    time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Fields returns the document representation of the restaurant.
func (r *Restaurant) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"name":      r.Name,
		"address":   r.Address,
		"rating":    r.Rating,
		"isOpen":    r.IsOpen,
		"createdAt": r.CreatedAt,
		"updatedAt": r.UpdatedAt,
	}
	if r.DeliveryTime != "" {
		fields["deliveryTime"] = r.DeliveryTime
	}
	if r.Image != "" {
		fields["image"] = r.Image
	}
	if r.CuisineType != "" {
		fields["cuisineType"] = r.CuisineType
	}
	if r.Location != nil {
		fields["location"] = r.Location.value()
	}
	return fields
}

func (l Location) value() map[string]interface{} {
	return map[string]interface{}{"latitude": l.Latitude, "longitude": l.Longitude}
}

// RestaurantPatch is a partial restaurant update.
type RestaurantPatch struct {
	Name         *string   `json:"name,omitempty" validate:"omitnil,min=1"`
	Address      *string   `json:"address,omitempty"`
	Rating       *float64  `json:"rating,omitempty" validate:"omitnil,gte=0,lte=5"`
	DeliveryTime *string   `json:"deliveryTime,omitempty"`
	Image        *string   `json:"image,omitempty"`
	CuisineType  *string   `json:"cuisineType,omitempty"`
	IsOpen       *bool     `json:"isOpen,omitempty"`
	Location     *Location `json:"location,omitempty" validate:"omitnil"`
}

// Fields returns only the fields set on the patch.
func (p RestaurantPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	setString(fields, "name", p.Name)
	setString(fields, "address", p.Address)
	setFloat(fields, "rating", p.Rating)
	setString(fields, "deliveryTime", p.DeliveryTime)
	setString(fields, "image", p.Image)
	setString(fields, "cuisineType", p.CuisineType)
	if p.IsOpen != nil {
		fields["isOpen"] = *p.IsOpen
	}
	if p.Location != nil {
		fields["location"] = p.Location.value()
	}
	return fields
}
