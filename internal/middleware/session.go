package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/go-blog/internal/model"
	"github.com/iliyamo/go-blog/internal/session"
)

// Context keys under which the resolved session state is stored. The
// identity is passed explicitly through the Echo context; nothing in
// the application reads authentication state from a global.
const (
	ctxIdentity = "identity"
	ctxToken    = "session_token"
)

// LoadSession returns a middleware that resolves the session cookie
// into an Identity and stores both the identity and the raw token in
// the request context. Requests without a cookie, or with a token the
// store no longer knows, continue as anonymous; the guards downstream
// decide whether that is acceptable.
func LoadSession(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := session.TokenFromRequest(c)
			if token != "" {
				c.Set(ctxToken, token)
				ident, err := store.Resolve(c.Request().Context(), token)
				if err != nil {
					// Treat a store failure as an anonymous request
					// rather than taking the whole page down; the
					// guards will redirect to login where needed.
					c.Logger().Errorf("session resolve failed: %v", err)
				} else if ident != nil {
					c.Set(ctxIdentity, ident)
				}
			}
			return next(c)
		}
	}
}

// IdentityFrom returns the authenticated identity for the request, or
// nil when the request is anonymous.
func IdentityFrom(c echo.Context) *model.Identity {
	if v, ok := c.Get(ctxIdentity).(*model.Identity); ok {
		return v
	}
	return nil
}

// TokenFrom returns the session token attached to the request, or ""
// when no cookie was presented.
func TokenFrom(c echo.Context) string {
	if v, ok := c.Get(ctxToken).(string); ok {
		return v
	}
	return ""
}

// ViewerID returns the user id to scope aggregate queries by: the
// authenticated user's id, or 0 for anonymous viewers. Id 0 never
// matches a likes row, so "liked by viewer" degrades to false.
func ViewerID(c echo.Context) uint64 {
	if ident := IdentityFrom(c); ident != nil {
		return ident.UserID
	}
	return 0
}
