package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/go-blog/internal/session"
)

// RequireAuth gates routes that need an authenticated user. Anonymous
// requests are redirected to the login page, not answered with a bare
// 401, because this is a browser-facing flow. The originally requested
// URL is stashed in the session as the post-login redirect target; when
// the guest has no session yet, an anonymous one is created to carry it.
func RequireAuth(store session.Store, ttl time.Duration, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFrom(c) != nil {
				return next(c)
			}
			ctx := c.Request().Context()
			token := TokenFrom(c)
			if token == "" {
				anon, err := store.Create(ctx, 0, "")
				if err != nil {
					c.Logger().Errorf("anonymous session create failed: %v", err)
					return c.Redirect(http.StatusFound, "/auth/login")
				}
				session.WriteCookie(c, anon, ttl, secure)
				token = anon
				c.Set(ctxToken, token)
			}
			if err := store.SetReturnTo(ctx, token, c.Request().RequestURI); err != nil {
				c.Logger().Errorf("set return target failed: %v", err)
			}
			return c.Redirect(http.StatusFound, "/auth/login")
		}
	}
}

// RequireGuest keeps authenticated users away from guest-only pages
// (login, register) by bouncing them to the home view. This prevents
// re-registration mid-session.
func RequireGuest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFrom(c) != nil {
				return c.Redirect(http.StatusFound, "/")
			}
			return next(c)
		}
	}
}
