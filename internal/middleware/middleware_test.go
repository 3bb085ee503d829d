package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/fooddelivery/internal/core"
	"github.com/example/fooddelivery/internal/models"
)

type fakeResolver struct {
	users map[string]*models.User
	err   error
}

func (f fakeResolver) Resolve(_ context.Context, uid, email, name string) (*core.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &core.Session{UID: uid, Email: email, DisplayName: name, User: f.users[email]}, nil
}

func newRouter(resolver SessionResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RecoveryMiddleware(zap.NewNop()), RequestLogger(zap.NewNop()))
	authMW := NewAuthMiddleware(DevTokenVerifier{}, resolver, zap.NewNop())

	router.GET("/me", authMW.VerifyToken(), func(c *gin.Context) {
		sess := SessionFromContext(c)
		c.JSON(http.StatusOK, gin.H{"uid": sess.UID, "email": sess.Email})
	})
	router.GET("/admin", authMW.VerifyToken(), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.GET("/panic", func(c *gin.Context) { panic("boom") })
	return router
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestVerifyToken(t *testing.T) {
	router := newRouter(fakeResolver{})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer garbage", wantStatus: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer uid-1:ana@example.com", wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer uid-1:ana@example.com", wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(router, "/me", tt.header)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	w := get(router, "/me", "Bearer uid-1:ana@example.com")
	assert.JSONEq(t, `{"uid":"uid-1","email":"ana@example.com"}`, w.Body.String())
}

func TestVerifyTokenResolverFailure(t *testing.T) {
	router := newRouter(fakeResolver{err: errors.New("firestore down")})

	w := get(router, "/me", "Bearer uid-1:ana@example.com")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	router := newRouter(fakeResolver{users: map[string]*models.User{
		"ana@example.com":        {ID: "u1", Role: models.RoleUser},
		"admin@fooddelivery.com": {ID: "u2", Role: models.RoleAdmin},
	}})

	assert.Equal(t, http.StatusForbidden, get(router, "/admin", "Bearer uid-1:ana@example.com").Code)
	assert.Equal(t, http.StatusForbidden, get(router, "/admin", "Bearer uid-3:nobody@example.com").Code)
	assert.Equal(t, http.StatusNoContent, get(router, "/admin", "Bearer uid-2:admin@fooddelivery.com").Code)
}

type staticVerifier struct {
	token *auth.Token
}

func (v staticVerifier) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return v.token, nil
}

func TestVerifyTokenIgnoresUnverifiedEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := fakeResolver{users: map[string]*models.User{
		"admin@fooddelivery.com": {ID: "u2", Role: models.RoleAdmin},
	}}
	authMW := NewAuthMiddleware(staticVerifier{token: &auth.Token{
		UID:    "intruder-uid",
		Claims: map[string]interface{}{"email": "admin@fooddelivery.com", "email_verified": false},
	}}, resolver, zap.NewNop())

	router := gin.New()
	router.GET("/me", authMW.VerifyToken(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": SessionFromContext(c).Email})
	})
	router.GET("/admin", authMW.VerifyToken(), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := get(router, "/me", "Bearer anything")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":""}`, w.Body.String())
	assert.Equal(t, http.StatusForbidden, get(router, "/admin", "Bearer anything").Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	router := newRouter(fakeResolver{})

	w := get(router, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
}

func TestDevTokenVerifier(t *testing.T) {
	token, err := DevTokenVerifier{}.VerifyIDToken(context.Background(), "uid-1:ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", token.UID)
	assert.Equal(t, "ana@example.com", token.Claims["email"])
	assert.Equal(t, true, token.Claims["email_verified"])

	_, err = DevTokenVerifier{}.VerifyIDToken(context.Background(), "uid-only")
	assert.Error(t, err)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware("https://admin.fooddelivery.com, https://app.fooddelivery.com"))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.fooddelivery.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "https://app.fooddelivery.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

var _ TokenVerifier = (*auth.Client)(nil)
