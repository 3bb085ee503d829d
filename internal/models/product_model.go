package models

import "time"

// Extra is an optional add-on offered with a product.
type Extra struct {
	Name  string  `json:"name" firestore:"name" validate:"required"`
	Price float64 `json:"price" firestore:"price" validate:"gte=0"`
}

// Product is a catalog entry. It is stored in the current collection; records served from
// the legacy collection carry its name in Source.
type Product struct {
	ID           string     `json:"id" firestore:"-"`
	Name         string     `json:"name" firestore:"name" validate:"required"`
	Description  string     `json:"description" firestore:"description"`
	Price        float64    `json:"price" firestore:"price" validate:"gte=0"`
	Category     string     `json:"category" firestore:"category" validate:"required"`
	Image        string     `json:"image,omitempty" firestore:"image,omitempty"`
	ImageURL     string     `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	RestaurantID string     `json:"restaurantId,omitempty" firestore:"restaurantId,omitempty"`
	Rating       float64    `json:"rating" firestore:"rating" validate:"gte=0,lte=5"`
	Available    bool       `json:"available" firestore:"available"`
	Sides        []string   `json:"sides,omitempty" firestore:"sides,omitempty"`
	Extras       []Extra    `json:"extras,omitempty" firestore:"extras,omitempty" validate:"dive"`
	CreatedAt    time.Time  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" firestore:"updatedAt"`
	OriginalID   string     `json:"originalId,omitempty" firestore:"originalId,omitempty"`
	MigratedAt   *time.Time `json:"migratedAt,omitempty" firestore:"migratedAt,omitempty"`
	Source       string     `json:"_source,omitempty" firestore:"-"`
}

// Fields returns the document representation of the product.
func (p *Product) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"category":    p.Category,
		"rating":      p.Rating,
		"available":   p.Available,
		"createdAt":   p.CreatedAt,
		"updatedAt":   p.UpdatedAt,
	}
	if p.Image != "" {
		fields["image"] = p.Image
	}
	if p.ImageURL != "" {
		fields["imageUrl"] = p.ImageURL
	}
	if p.RestaurantID != "" {
		fields["restaurantId"] = p.RestaurantID
	}
	if len(p.Sides) > 0 {
		fields["sides"] = stringsToValues(p.Sides)
	}
	if len(p.Extras) > 0 {
		fields["extras"] = extrasToValues(p.Extras)
	}
	if p.OriginalID != "" {
		fields["originalId"] = p.OriginalID
	}
	if p.MigratedAt != nil {
		fields["migratedAt"] = *p.MigratedAt
	}
	return fields
}

// ProductPatch is a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Name         *string   `json:"name,omitempty" validate:"omitnil,min=1"`
	Description  *string   `json:"description,omitempty"`
	Price        *float64  `json:"price,omitempty" validate:"omitnil,gte=0"`
	Category     *string   `json:"category,omitempty" validate:"omitnil,min=1"`
	Image        *string   `json:"image,omitempty"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	RestaurantID *string   `json:"restaurantId,omitempty"`
	Rating       *float64  `json:"rating,omitempty" validate:"omitnil,gte=0,lte=5"`
	Available    *bool     `json:"available,omitempty"`
	Sides        *[]string `json:"sides,omitempty"`
	Extras       *[]Extra  `json:"extras,omitempty" validate:"omitnil,dive"`
}

// Fields returns only the fields set on the patch.
func (p ProductPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	setString(fields, "name", p.Name)
	setString(fields, "description", p.Description)
	setFloat(fields, "price", p.Price)
	setString(fields, "category", p.Category)
	setString(fields, "image", p.Image)
	setString(fields, "imageUrl", p.ImageURL)
	setString(fields, "restaurantId", p.RestaurantID)
	setFloat(fields, "rating", p.Rating)
	if p.Available != nil {
		fields["available"] = *p.Available
	}
	if p.Sides != nil {
		fields["sides"] = stringsToValues(*p.Sides)
	}
	if p.Extras != nil {
		fields["extras"] = extrasToValues(*p.Extras)
	}
	return fields
}

// CreateProductRequest is the payload for adding a product. Available defaults to true.
type CreateProductRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Image        string   `json:"image,omitempty"`
	ImageURL     string   `json:"imageUrl,omitempty"`
	RestaurantID string   `json:"restaurantId,omitempty"`
	Rating       float64  `json:"rating,omitempty"`
	Available    *bool    `json:"available,omitempty"`
	Sides        []string `json:"sides,omitempty"`
	Extras       []Extra  `json:"extras,omitempty"`
}

// Product converts the request into a product record.
func (r CreateProductRequest) Product() *Product {
	p := &Product{
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		Image:        r.Image,
		ImageURL:     r.ImageURL,
		RestaurantID: r.RestaurantID,
		Rating:       r.Rating,
		Available:    true,
		Sides:        r.Sides,
		Extras:       r.Extras,
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Available != nil {
		p.Available = *r.Available
	}
	return p
}

func extrasToValues(extras []Extra) []interface{} {
	out := make([]interface{}, 0, len(extras))
	for _, e := range extras {
		out = append(out, map[string]interface{}{"name": e.Name, "price": e.Price})
	}
	return out
}
