package db

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/models"
	"github.com/example/fooddelivery/pkg/database"
)

// UserRepository stores user profiles in the users collection. Document ids are assigned by
// the store; the Firebase Auth UID is kept in the uid field.
type UserRepository struct {
	base
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(store database.DocumentStore, logger *zap.Logger) *UserRepository {
	return &UserRepository{base: newBase(store, logger)}
}

// Add stores a new profile. Role defaults to user. Email uniqueness is enforced by the
// service layer.
func (r *UserRepository) Add(ctx context.Context, user *models.User) (*models.User, error) {
	if user == nil {
		return nil, fmt.Errorf("add user: %w: user is required", models.ErrValidation)
	}
	record := *user
	record.Email = normalizeEmail(record.Email)
	if record.Role == "" {
		record.Role = models.RoleUser
	}
	if err := models.Validate(&record); err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}
	now := r.now()
	record.CreatedAt = now
	record.UpdatedAt = now

	id, err := r.store.Create(ctx, UsersCollection, record.Fields())
	if err != nil {
		r.logger.Error("Failed to add user", zap.Error(err))
		return nil, fmt.Errorf("add user: %w", err)
	}
	record.ID = id
	r.logger.Debug("User added", zap.String("userId", id))
	return &record, nil
}

// Get reads one profile.
func (r *UserRepository) Get(ctx context.Context, userID string) (*models.User, error) {
	doc, err := r.store.Get(ctx, UsersCollection, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", userID, err)
	}
	return decodeUser(doc)
}

// List returns every profile.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	docs, err := r.store.GetAll(ctx, UsersCollection)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return decodeUsers(docs)
}

// Update applies a partial update and stamps updatedAt.
func (r *UserRepository) Update(ctx context.Context, userID string, patch models.UserPatch) error {
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		patch.Email = &email
	}
	if err := models.Validate(patch); err != nil {
		return fmt.Errorf("update user %q: %w", userID, err)
	}
	fields := patch.Fields()
	fields["updatedAt"] = r.now()
	if err := r.store.Update(ctx, UsersCollection, userID, fields); err != nil {
		return fmt.Errorf("update user %q: %w", userID, err)
	}
	return nil
}

// Delete removes a profile. The Firebase Auth account is not touched.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	if err := r.store.Delete(ctx, UsersCollection, userID); err != nil {
		return fmt.Errorf("delete user %q: %w", userID, err)
	}
	return nil
}

// GetByEmail returns the first profile with the given email, or nil when there is none.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := r.store.Query(ctx, UsersCollection, "email", normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) > 1 {
		r.logger.Warn("Multiple profiles share an email, using the first", zap.Int("count", len(docs)))
	}
	return decodeUser(docs[0])
}

// ListByRole returns the profiles with the given role.
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.User, error) {
	docs, err := r.store.Query(ctx, UsersCollection, "role", string(role))
	if err != nil {
		return nil, fmt.Errorf("list users with role %q: %w", role, err)
	}
	return decodeUsers(docs)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func decodeUser(doc database.Document) (*models.User, error) {
	var user models.User
	if err := database.Decode(doc, &user); err != nil {
		return nil, err
	}
	user.ID = doc.ID
	return &user, nil
}

func decodeUsers(docs []database.Document) ([]*models.User, error) {
	users := make([]*models.User, 0, len(docs))
	for _, doc := range docs {
		user, err := decodeUser(doc)
		if err != nil {
			return nil, fmt.Errorf("decode users: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}
