package router // package router defines how HTTP routes are registered for the app

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/go-blog/internal/config"
	"github.com/iliyamo/go-blog/internal/handler"
	"github.com/iliyamo/go-blog/internal/middleware"
	"github.com/iliyamo/go-blog/internal/session"
)

// Deps bundles everything route registration needs. Handlers are
// constructed in cmd/server; the router only wires them to paths and
// guards.
type Deps struct {
	Cfg      config.Config
	Sessions session.Store
	Guard    *middleware.OwnershipGuard
	Auth     *handler.AuthHandler
	Posts    *handler.PostHandler
	Comments *handler.CommentHandler
	Likes    *handler.LikeHandler
	Profiles *handler.ProfileHandler
}

// RegisterRoutes applies the global middleware chain and maps every
// route of the application. HTML forms can only POST, so the method
// override middleware rewrites the _method form field into PUT/DELETE
// before routing happens.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Pre(echomw.MethodOverrideWithConfig(echomw.MethodOverrideConfig{
		Getter: echomw.MethodFromForm("_method"),
	}))
	e.Use(middleware.LoadSession(d.Sessions))

	// Guards. requireAuth redirects guests to the login page and
	// remembers where they were headed; requireGuest bounces logged-in
	// users off the login/register pages.
	requireAuth := middleware.RequireAuth(d.Sessions, d.Cfg.SessionTTL, d.Cfg.CookieSecure())
	requireGuest := middleware.RequireGuest()
	ownPost := d.Guard.Require(middleware.KindPost)
	ownComment := d.Guard.Require(middleware.KindComment)

	e.GET("/healthz", handler.Health)

	// Public browsing.
	e.GET("/", d.Posts.Index)
	e.GET("/about", d.Posts.About)
	e.GET("/posts/:id", d.Posts.Show)
	e.GET("/posts/:id/likes", d.Likes.Count)
	e.GET("/users", d.Profiles.List)
	e.GET("/users/:username", d.Profiles.Public)

	// Authentication. Register and login are guest-only; logout works
	// for everyone and destroying a missing session is a no-op.
	auth := e.Group("/auth")
	auth.GET("/register", d.Auth.ShowRegister, requireGuest)
	auth.POST("/register", d.Auth.Register, requireGuest)
	auth.GET("/login", d.Auth.ShowLogin, requireGuest)
	auth.POST("/login", d.Auth.Login, requireGuest)
	auth.POST("/logout", d.Auth.Logout)

	// Posts. Creation needs authentication; edit/update/delete also
	// need ownership of the post named in the route.
	e.GET("/posts/new", d.Posts.New, requireAuth)
	e.POST("/posts", d.Posts.Create, requireAuth)
	e.GET("/posts/:id/edit", d.Posts.Edit, requireAuth, ownPost)
	e.PUT("/posts/:id", d.Posts.Update, requireAuth, ownPost)
	e.DELETE("/posts/:id", d.Posts.Delete, requireAuth, ownPost)

	// Comments. Anyone authenticated may comment on any post; deletion
	// is allowed to the comment's author or the parent post's author,
	// which the comment owner-loader resolves with both lookups.
	e.POST("/posts/:id/comments", d.Comments.Create, requireAuth)
	e.DELETE("/comments/:id", d.Comments.Delete, requireAuth, ownComment)

	// Likes.
	e.POST("/posts/:id/like", d.Likes.Like, requireAuth)
	e.DELETE("/posts/:id/like", d.Likes.Unlike, requireAuth)

	// Profiles.
	e.GET("/profile", d.Profiles.Show, requireAuth)
	e.GET("/profile/edit", d.Profiles.Edit, requireAuth)
	e.PUT("/profile", d.Profiles.Update, requireAuth)

	// Uploaded images and static assets.
	e.Static("/uploads", d.Cfg.UploadDir)
	e.Static("/static", "public/static")
}
