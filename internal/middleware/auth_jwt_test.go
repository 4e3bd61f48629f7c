package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test_secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(secret))
	assert.NoError(t, err)
	return s
}

func doRequest(authz string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestAuthJWT_ValidToken(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}
	now := time.Now()
	token := signToken(t, jwt.MapClaims{
		"sub":  int64(1),
		"role": "USER",
		"jti":  "jti-1",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}, testSecret)

	rec, c := doRequest("Bearer " + token)

	called := false
	h := middleware.AuthJWT(cfg)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, h(c))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), c.Get(middleware.CtxUserIDKey))
	assert.Equal(t, "USER", c.Get(middleware.CtxUserRoleKey))
	assert.Equal(t, "jti-1", c.Get(middleware.CtxTokenJTIKey))
}

func TestAuthJWT_MissingHeader(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}
	rec, c := doRequest("")

	h := middleware.AuthJWT(cfg)(func(c echo.Context) error {
		t.Fatal("handler should not be called")
		return nil
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}
	now := time.Now()
	token := signToken(t, jwt.MapClaims{
		"sub": int64(1), "role": "USER",
		"exp": now.Add(time.Hour).Unix(),
	}, "other_secret")

	rec, c := doRequest("Bearer " + token)

	h := middleware.AuthJWT(cfg)(func(c echo.Context) error {
		t.Fatal("handler should not be called")
		return nil
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	cfg := config.Config{JWTSecret: testSecret}
	token := signToken(t, jwt.MapClaims{
		"sub": int64(1), "role": "USER",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	rec, c := doRequest("Bearer " + token)

	h := middleware.AuthJWT(cfg)(func(c echo.Context) error {
		t.Fatal("handler should not be called")
		return nil
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoleGuard_RejectsUser(t *testing.T) {
	rec, c := doRequest("")
	c.Set(middleware.CtxUserRoleKey, "USER")

	h := middleware.AdminRoleGuard()(func(c echo.Context) error {
		t.Fatal("handler should not be called")
		return nil
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleGuard_AllowsAdmin(t *testing.T) {
	rec, c := doRequest("")
	c.Set(middleware.CtxUserRoleKey, string(model.RoleAdmin))

	h := middleware.AdminRoleGuard()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
