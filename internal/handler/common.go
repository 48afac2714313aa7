package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/go-blog/internal/middleware"
	"github.com/iliyamo/go-blog/internal/session"
)

// dbTimeout bounds every repository call made from a handler.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// page assembles the data map every template expects: the page title,
// the viewer's identity (nil for guests) and any flash messages, which
// are consumed here so they render exactly once.
func page(c echo.Context, store session.Store, title string) map[string]interface{} {
	data := map[string]interface{}{
		"Title":    title,
		"Identity": middleware.IdentityFrom(c),
	}
	if token := middleware.TokenFrom(c); token != "" {
		if f, err := store.PopFlash(c.Request().Context(), token); err == nil && (f.Success != "" || f.Error != "") {
			data["Flash"] = f
		}
	}
	return data
}

// addFlash attaches a one-time message to the viewer's session. Guests
// without a session simply get no flash; the redirect still happens.
func addFlash(c echo.Context, store session.Store, kind, message string) {
	token := middleware.TokenFrom(c)
	if token == "" {
		return
	}
	if err := store.SetFlash(c.Request().Context(), token, kind, message); err != nil {
		c.Logger().Errorf("set flash failed: %v", err)
	}
}

// renderError shows the error view with the given status. Internal
// detail stays in the server log; the user sees a generic message.
func renderError(c echo.Context, store session.Store, status int, message string) error {
	data := page(c, store, "Error")
	data["Error"] = message
	return c.Render(status, "error", data)
}

// serverError logs the underlying failure and renders the generic
// storage-failure page.
func serverError(c echo.Context, store session.Store, err error) error {
	c.Logger().Errorf("request failed: %v", err)
	return renderError(c, store, http.StatusInternalServerError, "Server error")
}
