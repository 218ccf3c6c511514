package server

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohammad-safakhou/newsdesk/internal/runtime"
	"github.com/mohammad-safakhou/newsdesk/internal/session"
	"github.com/mohammad-safakhou/newsdesk/internal/store"
	"github.com/mohammad-safakhou/newsdesk/models"
)

const minPasswordLen = 8

type AuthHandler struct {
	Store         *store.Store
	Sessions      session.Registry
	Secret        []byte
	TTL           time.Duration
	SecureCookies bool
	Logger        *zap.Logger
}

func (a *AuthHandler) Register(g *echo.Group) {
	g.POST("/signup", a.signup)
	g.POST("/login", a.login)
	g.POST("/logout", a.logout, runtime.EchoAuthMiddleware(a.Secret, a.Sessions))
}

// Signup
//
//	@Summary	User signup
//	@Tags		auth
//	@Param		payload	body		AuthSignupRequest	true	"Signup payload"
//	@Success	201		{object}	IDResponse
//	@Failure	400		{object}	HTTPError
//	@Router		/api/auth/signup [post]
func (a *AuthHandler) signup(c echo.Context) error {
	var req AuthSignupRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return badRequest("valid email required")
	}
	if len(req.Password) < minPasswordLen {
		return badRequest("password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return httpError(err)
	}
	id, err := a.Store.CreateUser(c.Request().Context(), email, string(hash))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

// Login
//
//	@Summary	Login; returns the JWT in a cookie and in the body
//	@Tags		auth
//	@Param		payload	body		AuthLoginRequest	true	"Login payload"
//	@Success	200		{object}	TokenResponse
//	@Failure	401		{object}	HTTPError
//	@Router		/api/auth/login [post]
func (a *AuthHandler) login(c echo.Context) error {
	var req AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err.Error())
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest("email and password required")
	}
	ctx := c.Request().Context()
	user, err := a.Store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
		}
		return httpError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	sess, err := a.Sessions.Create(ctx, user.ID)
	if err != nil {
		return httpError(err)
	}
	signed, err := runtime.SignJWT(user.ID, sess.ID, a.Secret, a.TTL)
	if err != nil {
		return httpError(err)
	}
	c.SetCookie(&http.Cookie{
		Name:     runtime.AuthCookie,
		Value:    signed,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   a.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	c.Response().Header().Set("Authorization", "Bearer "+signed)
	return c.JSON(http.StatusOK, TokenResponse{Token: signed, ExpiresAt: sess.ExpiresAt})
}

// Logout revokes the current session and clears the cookie.
func (a *AuthHandler) logout(c echo.Context) error {
	if sid, ok := c.Get(runtime.SessionIDKey).(string); ok {
		if err := a.Sessions.Revoke(c.Request().Context(), sid); err != nil {
			a.Logger.Warn("session revoke failed", zap.Error(err))
		}
	}
	c.SetCookie(&http.Cookie{Name: runtime.AuthCookie, Value: "", Path: "/", MaxAge: -1})
	return c.NoContent(http.StatusOK)
}
