package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/crypto"
	"github.com/example/fooddelivery/internal/db"
	"github.com/example/fooddelivery/internal/models"
)

var errCardEncryptionDisabled = errors.New("card number encryption is not configured")

type userService struct {
	users      db.UserStore
	cipher     *crypto.Cipher
	adminEmail string
	audit      AuditService
	logger     *zap.Logger
}

// NewUserService creates a UserService. adminEmail is reserved for the seeded admin and
// cannot be used to register.
func NewUserService(users db.UserStore, cipher *crypto.Cipher, adminEmail string, audit AuditService, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		users:      users,
		cipher:     cipher,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
		audit:      audit,
		logger:     logger,
	}
}

// Resolve looks the profile up by the verified email and links it to the Firebase UID the
// first time that account signs in. A profile already linked to another UID is not
// attached to the session. Callers pass an empty email when the token's email is not
// verified.
func (s *userService) Resolve(ctx context.Context, uid, email, displayName string) (*Session, error) {
	sess := &Session{UID: uid, Email: email, DisplayName: displayName}
	if email == "" {
		return sess, nil
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if user == nil {
		return sess, nil
	}
	if user.UID != "" && user.UID != uid {
		// The profile belongs to another sign-in account; this one gets no profile.
		s.logger.Warn("Profile is linked to a different auth account",
			zap.String("userId", user.ID), zap.String("uid", uid))
		return sess, nil
	}
	if user.UID == "" && uid != "" {
		if err := s.users.Update(ctx, user.ID, models.UserPatch{UID: &uid}); err != nil {
			s.logger.Warn("Failed to link profile to auth account", zap.String("userId", user.ID), zap.Error(err))
		} else {
			user.UID = uid
		}
	}
	sess.User = user
	return sess, nil
}

// Register creates the caller's profile with the email from their token. The role is
// always user.
func (s *userService) Register(ctx context.Context, sess *Session, req models.RegisterRequest) (*models.User, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(sess.Email) == "" {
		return nil, fmt.Errorf("%w: the account has no email address", models.ErrValidation)
	}
	if s.adminEmail != "" && sess.HasEmail(s.adminEmail) {
		return nil, ErrReservedEmail
	}
	existing, err := s.users.GetByEmail(ctx, sess.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	card, err := s.encryptCard(req.CardNumber)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Add(ctx, &models.User{
		UID:        sess.UID,
		Name:       req.Name,
		Surname:    req.Surname,
		Email:      sess.Email,
		Role:       models.RoleUser,
		Contact:    req.Contact,
		Address:    req.Address,
		CardNumber: card,
	})
	if err != nil {
		return nil, err
	}
	sess.User = user
	s.logger.Info("User registered", zap.String("userId", user.ID))
	return s.present(user), nil
}

func (s *userService) GetProfile(ctx context.Context, sess *Session) (*models.User, error) {
	if err := requireProfile(sess); err != nil {
		return nil, err
	}
	return s.get(ctx, sess.User.ID)
}

// UpdateProfile applies the caller's edits to their own profile. Email and role stay as
// they are.
func (s *userService) UpdateProfile(ctx context.Context, sess *Session, req models.UpdateProfileRequest) (*models.User, error) {
	if err := requireProfile(sess); err != nil {
		return nil, err
	}
	patch := req.Patch()
	if err := s.encryptPatchCard(&patch); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, sess.User.ID, patch); err != nil {
		return nil, notFound(err, ErrUserNotFound, sess.User.ID)
	}
	return s.get(ctx, sess.User.ID)
}

func (s *userService) ListUsers(ctx context.Context, sess *Session) ([]*models.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		out = append(out, s.present(u))
	}
	return out, nil
}

func (s *userService) UpdateUser(ctx context.Context, sess *Session, userID string, patch models.UserPatch) (*models.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	patch.UID = nil
	if patch.Email != nil {
		other, err := s.users.GetByEmail(ctx, *patch.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != userID {
			return nil, ErrDuplicateEmail
		}
	}
	if err := s.encryptPatchCard(&patch); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, userID, patch); err != nil {
		return nil, notFound(err, ErrUserNotFound, userID)
	}
	details := map[string]interface{}{}
	if patch.Role != nil {
		details["role"] = string(*patch.Role)
	}
	record(ctx, s.audit, s.logger, sess, models.AuditUserUpdate, "USER", userID, details)
	return s.get(ctx, userID)
}

func (s *userService) DeleteUser(ctx context.Context, sess *Session, userID string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return notFound(err, ErrUserNotFound, userID)
	}
	record(ctx, s.audit, s.logger, sess, models.AuditUserDelete, "USER", userID, nil)
	return nil
}

// EnsureAdmin is used by seeding. An existing profile with the email is promoted.
func (s *userService) EnsureAdmin(ctx context.Context, email, name string) (*models.User, bool, error) {
	admins, err := s.users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	if len(admins) > 0 {
		return s.present(admins[0]), false, nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		role := models.RoleAdmin
		if err := s.users.Update(ctx, existing.ID, models.UserPatch{Role: &role}); err != nil {
			return nil, false, err
		}
		s.logger.Info("Existing profile promoted to admin", zap.String("userId", existing.ID))
		user, err := s.get(ctx, existing.ID)
		return user, true, err
	}

	if name == "" {
		name = "Admin"
	}
	user, err := s.users.Add(ctx, &models.User{Name: name, Email: email, Role: models.RoleAdmin})
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("Admin profile created", zap.String("userId", user.ID))
	return s.present(user), true, nil
}

func (s *userService) get(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, userID)
	}
	return s.present(user), nil
}

func (s *userService) encryptCard(number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", nil
	}
	if s.cipher == nil {
		return "", errCardEncryptionDisabled
	}
	return s.cipher.Encrypt(number)
}

func (s *userService) encryptPatchCard(patch *models.UserPatch) error {
	if patch.CardNumber == nil {
		return nil
	}
	sealed, err := s.encryptCard(*patch.CardNumber)
	if err != nil {
		return err
	}
	patch.CardNumber = &sealed
	return nil
}

// present returns a copy safe to serve: the card number is decrypted and masked.
func (s *userService) present(user *models.User) *models.User {
	out := *user
	if out.CardNumber == "" {
		return &out
	}
	plain := out.CardNumber
	if s.cipher != nil {
		if decrypted, err := s.cipher.Decrypt(out.CardNumber); err == nil {
			plain = decrypted
		} else {
			s.logger.Warn("Stored card number could not be decrypted", zap.String("userId", user.ID))
		}
	}
	out.CardNumber = crypto.MaskCardNumber(plain)
	return &out
}
