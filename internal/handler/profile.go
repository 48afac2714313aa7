package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/go-blog/internal/middleware"
	"github.com/iliyamo/go-blog/internal/repository"
	"github.com/iliyamo/go-blog/internal/session"
	"github.com/iliyamo/go-blog/internal/storage"
)

// ProfileHandler serves the viewer's own profile, the profile edit
// flow, public profiles and the member directory.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
	Users    *repository.UserRepo
	Uploads  *storage.Uploader
	Sessions session.Store
}

func NewProfileHandler(profiles *repository.ProfileRepo, users *repository.UserRepo, uploads *storage.Uploader, sessions session.Store) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Users: users, Uploads: uploads, Sessions: sessions}
}

// Show renders the authenticated user's own profile, email included.
func (h *ProfileHandler) Show(c echo.Context) error {
	ident := middleware.IdentityFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	profile, err := h.Profiles.GetProfile(ctx, ident.UserID)
	if err != nil {
		return serverError(c, h.Sessions, err)
	}
	data := page(c, h.Sessions, "My Profile")
	data["Profile"] = profile
	return c.Render(http.StatusOK, "profile", data)
}

// Edit renders the profile edit form with the stored avatar reference
// echoed into a hidden field.
func (h *ProfileHandler) Edit(c echo.Context) error {
	ident := middleware.IdentityFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	profile, err := h.Profiles.GetProfile(ctx, ident.UserID)
	if err != nil {
		return serverError(c, h.Sessions, err)
	}
	data := page(c, h.Sessions, "Edit Profile")
	data["Profile"] = profile
	return c.Render(http.StatusOK, "edit-profile", data)
}

// Update mutates bio and avatar. Only these two fields are editable;
// username, email and the password hash are untouchable from here.
func (h *ProfileHandler) Update(c echo.Context) error {
	ident := middleware.IdentityFrom(c)
	bio := strings.TrimSpace(c.FormValue("bio"))
	avatarURL := c.FormValue("existingAvatar")

	if fh, err := c.FormFile("avatar"); err == nil {
		uploaded, err := h.Uploads.SaveAvatar(fh)
		if err != nil {
			addFlash(c, h.Sessions, session.FlashError, err.Error())
			return c.Redirect(http.StatusFound, "/profile/edit")
		}
		avatarURL = uploaded
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, ident.UserID, bio, avatarURL); err != nil {
		return serverError(c, h.Sessions, err)
	}
	addFlash(c, h.Sessions, session.FlashSuccess, "Profile updated successfully!")
	return c.Redirect(http.StatusFound, "/profile")
}

// Public renders another user's profile by username: no email, same
// counts, plus their ten most recent posts.
func (h *ProfileHandler) Public(c echo.Context) error {
	username := c.Param("username")

	ctx, cancel := reqCtx(c)
	defer cancel()

	profile, err := h.Profiles.GetPublicProfile(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return renderError(c, h.Sessions, http.StatusNotFound, "User not found")
	}
	if err != nil {
		return serverError(c, h.Sessions, err)
	}

	isOwn := false
	if ident := middleware.IdentityFrom(c); ident != nil && ident.UserID == profile.User.ID {
		isOwn = true
	}
	data := page(c, h.Sessions, profile.User.Username+"'s Profile")
	data["Profile"] = profile
	data["IsOwnProfile"] = isOwn
	return c.Render(http.StatusOK, "user-profile", data)
}

// List renders the member directory with per-user counts.
func (h *ProfileHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Profiles.ListUsers(ctx)
	if err != nil {
		return serverError(c, h.Sessions, err)
	}
	data := page(c, h.Sessions, "Community Members")
	data["Users"] = users
	return c.Render(http.StatusOK, "users", data)
}
