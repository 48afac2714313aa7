package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/go-blog/internal/config"
	"github.com/iliyamo/go-blog/internal/middleware"
	"github.com/iliyamo/go-blog/internal/repository"
	"github.com/iliyamo/go-blog/internal/service"
	"github.com/iliyamo/go-blog/internal/session"
)

// AuthHandler bundles dependencies for the registration, login and
// logout flows. These are browser form flows: failures re-render the
// form with the collected errors and the prior input (never passwords),
// successes redirect.
type AuthHandler struct {
	Cfg      config.Config
	Creds    *service.CredentialService
	Sessions session.Store
}

func NewAuthHandler(cfg config.Config, creds *service.CredentialService, sessions session.Store) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Creds: creds, Sessions: sessions}
}

// ShowRegister renders the empty registration form.
func (h *AuthHandler) ShowRegister(c echo.Context) error {
	data := page(c, h.Sessions, "Register")
	data["Errors"] = []string{}
	data["FormData"] = map[string]string{}
	return c.Render(http.StatusOK, "register", data)
}

// Register processes the registration form. Validation problems come
// back as one exhaustive list; on success a session is started
// immediately and the user lands on the home page.
func (h *AuthHandler) Register(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	confirm := c.FormValue("confirmPassword")

	ctx, cancel := reqCtx(c)
	defer cancel()

	userID, err := h.Creds.Register(ctx, username, email, password, confirm)
	if err != nil {
		var verr *repository.ValidationError
		if errors.As(err, &verr) {
			data := page(c, h.Sessions, "Register")
			data["Errors"] = verr.Problems
			// Password fields are never echoed back.
			data["FormData"] = map[string]string{"username": username, "email": email}
			return c.Render(http.StatusOK, "register", data)
		}
		return serverError(c, h.Sessions, err)
	}

	return h.startSession(c, userID, username, "/")
}

// ShowLogin renders the empty login form.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	data := page(c, h.Sessions, "Login")
	data["Errors"] = []string{}
	data["FormData"] = map[string]string{}
	return c.Render(http.StatusOK, "login", data)
}

// Login authenticates by username or email. Every failure shows the
// same generic message so the form never discloses which part was
// wrong. On success the pre-login returnTo target, if any, wins over
// the home page.
func (h *AuthHandler) Login(c echo.Context) error {
	identifier := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")

	renderFailure := func(problems []string) error {
		data := page(c, h.Sessions, "Login")
		data["Errors"] = problems
		data["FormData"] = map[string]string{"username": identifier}
		return c.Render(http.StatusOK, "login", data)
	}

	if identifier == "" || password == "" {
		return renderFailure([]string{"Username and password are required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	ident, err := h.Creds.Authenticate(ctx, identifier, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return renderFailure([]string{"Invalid credentials"})
	}
	if err != nil {
		return serverError(c, h.Sessions, err)
	}

	// A guest session may have been created by RequireAuth to remember
	// where the user was headed; honor it, then retire that session.
	target := "/"
	if old := middleware.TokenFrom(c); old != "" {
		if saved, err := h.Sessions.PopReturnTo(ctx, old); err == nil && saved != "" {
			target = saved
		}
	}
	return h.startSession(c, ident.UserID, ident.Username, target)
}

// Logout destroys the session and clears the cookie. Destroying an
// already-gone session is a no-op, so logout never fails visibly.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if token := middleware.TokenFrom(c); token != "" {
		if err := h.Sessions.Destroy(ctx, token); err != nil {
			c.Logger().Errorf("session destroy failed: %v", err)
		}
	}
	session.ClearCookie(c, h.Cfg.CookieSecure())
	return c.Redirect(http.StatusFound, "/")
}

// startSession rotates the session: any pre-auth token is destroyed and
// a fresh one is issued, so a token fixated before login never becomes
// authenticated.
func (h *AuthHandler) startSession(c echo.Context, userID uint64, username, target string) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if old := middleware.TokenFrom(c); old != "" {
		if err := h.Sessions.Destroy(ctx, old); err != nil {
			c.Logger().Errorf("old session destroy failed: %v", err)
		}
	}
	token, err := h.Sessions.Create(ctx, userID, username)
	if err != nil {
		return serverError(c, h.Sessions, err)
	}
	session.WriteCookie(c, token, h.Cfg.SessionTTL, h.Cfg.CookieSecure())
	return c.Redirect(http.StatusFound, target)
}
