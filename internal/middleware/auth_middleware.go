package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
)

const sessionKey = "session"

// ErrorResponse mirrors api.ErrorResponse; the api package imports this one.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// SessionResolver turns a verified identity into a session. core.UserService satisfies it.
type SessionResolver interface {
	Resolve(ctx context.Context, uid, email, displayName string) (*core.Session, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier TokenVerifier
	resolver SessionResolver
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance. It panics on a nil verifier or
// resolver since no authenticated route can work without them.
func NewAuthMiddleware(verifier TokenVerifier, resolver SessionResolver, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil || resolver == nil {
		panic("middleware: token verifier and session resolver are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{verifier: verifier, resolver: resolver, logger: logger}
}

// VerifyToken checks the bearer token and stores the resolved *core.Session in the context.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
			return
		}

		token, err := m.verifier.VerifyIDToken(c.Request.Context(), parts[1])
		if err != nil {
			m.logger.Info("Rejected ID token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
			return
		}

		email := verifiedEmail(token)
		name, _ := token.Claims["name"].(string)
		sess, err := m.resolver.Resolve(c.Request.Context(), token.UID, email, name)
		if err != nil {
			m.logger.Error("Failed to resolve session", zap.String("uid", token.UID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load user profile"})
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// verifiedEmail returns the token's email claim, or "" unless email_verified is true.
// Profiles are matched by email, so an unverified address must never select one.
func verifiedEmail(token *auth.Token) string {
	email, _ := token.Claims["email"].(string)
	if verified, _ := token.Claims["email_verified"].(bool); !verified {
		return ""
	}
	return email
}

// RequireAdmin aborts with 403 unless the session's profile has the admin role. It must
// run after VerifyToken.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := SessionFromContext(c)
		if sess == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			return
		}
		if !sess.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: core.ErrForbidden.Error()})
			return
		}
		c.Next()
	}
}

// SessionFromContext returns the session stored by VerifyToken, or nil.
func SessionFromContext(c *gin.Context) *core.Session {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := value.(*core.Session)
	return sess
}
