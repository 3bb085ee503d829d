package models

import "time"

// Role is the access level of a user profile.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a user profile. UID links it to the Firebase Auth account; the document
// id is assigned by the store.
type User struct {
	ID         string    `json:"id" firestore:"-"`
	UID        string    `json:"uid,omitempty" firestore:"uid,omitempty"`
	Name       string    `json:"name" firestore:"name" validate:"required"`
	Surname    string    `json:"surname,omitempty" firestore:"surname,omitempty"`
	Email      string    `json:"email" firestore:"email" validate:"required,email"`
	Role       Role      `json:"role" firestore:"role" validate:"role"`
	Contact    string    `json:"contact,omitempty" firestore:"contact,omitempty"`
	Address    string    `json:"address,omitempty" firestore:"address,omitempty"`
	CardNumber string    `json:"cardNumber,omitempty" firestore:"cardNumber,omitempty"` // encrypted at rest, masked in responses
	PhotoURL   string    `json:"photoUrl,omitempty" firestore:"photoUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Fields returns the document representation of the user.
func (u *User) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"name":      u.Name,
		"email":     u.Email,
		"role":      string(u.Role),
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
	optional := map[string]string{
		"uid":        u.UID,
		"surname":    u.Surname,
		"contact":    u.Contact,
		"address":    u.Address,
		"cardNumber": u.CardNumber,
		"photoUrl":   u.PhotoURL,
	}
	for key, value := range optional {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

// UserPatch is a partial profile update.
type UserPatch struct {
	Name       *string `json:"name,omitempty" validate:"omitnil,min=1"`
	Surname    *string `json:"surname,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitnil,email"`
	Role       *Role   `json:"role,omitempty" validate:"omitnil,role"`
	Contact    *string `json:"contact,omitempty"`
	Address    *string `json:"address,omitempty"`
	CardNumber *string `json:"cardNumber,omitempty"`
	PhotoURL   *string `json:"photoUrl,omitempty"`
	UID        *string `json:"-"`
}

// Fields returns only the fields set on the patch.
func (p UserPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	setString(fields, "name", p.Name)
	setString(fields, "surname", p.Surname)
	setString(fields, "email", p.Email)
	if p.Role != nil {
		fields["role"] = string(*p.Role)
	}
	setString(fields, "contact", p.Contact)
	setString(fields, "address", p.Address)
	setString(fields, "cardNumber", p.CardNumber)
	setString(fields, "photoUrl", p.PhotoURL)
	setString(fields, "uid", p.UID)
	return fields
}

// RegisterRequest is the payload for creating the caller's profile after sign-up.
type RegisterRequest struct {
	Name       string `json:"name" binding:"required"`
	Surname    string `json:"surname,omitempty"`
	Contact    string `json:"contact,omitempty"`
	Address    string `json:"address,omitempty"`
	CardNumber string `json:"cardNumber,omitempty"`
}

// UpdateProfileRequest is the payload for a user editing their own profile.
type UpdateProfileRequest struct {
	Name       *string `json:"name,omitempty"`
	Surname    *string `json:"surname,omitempty"`
	Contact    *string `json:"contact,omitempty"`
	Address    *string `json:"address,omitempty"`
	CardNumber *string `json:"cardNumber,omitempty"`
	PhotoURL   *string `json:"photoUrl,omitempty"`
}

// Patch converts the request into a user patch. Role and email are not user-editable.
func (r UpdateProfileRequest) Patch() UserPatch {
	return UserPatch{
		Name:       r.Name,
		Surname:    r.Surname,
		Contact:    r.Contact,
		Address:    r.Address,
		CardNumber: r.CardNumber,
		PhotoURL:   r.PhotoURL,
	}
}
