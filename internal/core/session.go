package core

import (
	"strings"

	"github.com/example/fooddelivery/internal/models"
)

// Session is the authenticated caller of a request. UID and Email come from the verified
// Firebase ID token; User is the matching profile, nil until the caller registers.
type Session struct {
	UID         string
	Email       string
	DisplayName string
	User        *models.User
}

// IsAdmin reports whether the caller's profile has the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.User.IsAdmin()
}

// HasEmail compares the session email case-insensitively.
func (s *Session) HasEmail(email string) bool {
	return s != nil && strings.EqualFold(strings.TrimSpace(s.Email), strings.TrimSpace(email))
}

func requireSession(s *Session) error {
	if s == nil || s.UID == "" {
		return ErrUnauthenticated
	}
	return nil
}

func requireProfile(s *Session) error {
	if err := requireSession(s); err != nil {
		return err
	}
	if s.User == nil {
		return ErrProfileRequired
	}
	return nil
}

func requireAdmin(s *Session) error {
	if err := requireSession(s); err != nil {
		return err
	}
	if !s.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// actorID identifies the caller in audit entries.
func actorID(s *Session) string {
	if s == nil {
		return ""
	}
	if s.User != nil && s.User.ID != "" {
		return s.User.ID
	}
	return s.UID
}
