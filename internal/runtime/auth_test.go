package runtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/newsdesk/config"
	"github.com/mohammad-safakhou/newsdesk/internal/session"
	"github.com/mohammad-safakhou/newsdesk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestSignAndParse(t *testing.T) {
	tok, err := SignJWT("user-1", "sess-1", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "sess-1", claims.SessionID)

	_, err = ParseJWT(tok, []byte("other"))
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	expired, err := SignJWT("user-1", "sess-1", secret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, secret)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestLoadJWTSecret(t *testing.T) {
	_, err := LoadJWTSecret(&config.Config{})
	assert.Error(t, err)

	cfg := &config.Config{}
	cfg.Server.JWTSecret = "s3cret"
	got, err := LoadJWTSecret(cfg)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), got)
}

func serve(t *testing.T, reg session.Registry, setup func(*http.Request)) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	reached := false
	e.GET("/p", func(c echo.Context) error {
		reached = true
		uid, ok := SubjectFromContext(c.Request().Context())
		require.True(t, ok)
		require.Equal(t, c.Get(UserIDKey), uid)
		return c.NoContent(http.StatusNoContent)
	}, EchoAuthMiddleware(secret, reg))
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	setup(req)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, reached
}

func TestMiddleware(t *testing.T) {
	reg := session.NewMemory(time.Hour)
	s, err := reg.Create(context.Background(), "user-1")
	require.NoError(t, err)
	tok, err := SignJWT("user-1", s.ID, secret, time.Hour)
	require.NoError(t, err)

	rec, reached := serve(t, reg, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, reached)

	rec, reached = serve(t, reg, func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AuthCookie, Value: tok}) })
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, reached)

	rec, reached = serve(t, reg, func(*http.Request) {})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)

	require.NoError(t, reg.Revoke(context.Background(), s.ID))
	rec, reached = serve(t, reg, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestMiddlewareRejectsForeignSession(t *testing.T) {
	reg := session.NewMemory(time.Hour)
	s, _ := reg.Create(context.Background(), "user-2")
	tok, err := SignJWT("user-1", s.ID, secret, time.Hour)
	require.NoError(t, err)

	rec, reached := serve(t, reg, func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}
