package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/go-blog/internal/middleware"
	"github.com/iliyamo/go-blog/internal/repository"
	"github.com/iliyamo/go-blog/internal/session"
)

// LikeHandler likes and unlikes posts and exposes the JSON like-count
// endpoint consumed by the client-side counter.
type LikeHandler struct {
	Likes    *repository.LikeRepo
	Sessions session.Store
}

func NewLikeHandler(likes *repository.LikeRepo, sessions session.Store) *LikeHandler {
	return &LikeHandler{Likes: likes, Sessions: sessions}
}

// Like records the viewer's like. A duplicate attempt is not a hard
// failure: the unique-key rejection surfaces as a flash message.
func (h *LikeHandler) Like(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return renderError(c, h.Sessions, http.StatusNotFound, "Post not found")
	}
	ident := middleware.IdentityFrom(c)
	redirect := fmt.Sprintf("/posts/%d", postID)

	ctx, cancel := reqCtx(c)
	defer cancel()

	err = h.Likes.Like(ctx, ident.UserID, postID)
	switch {
	case errors.Is(err, repository.ErrAlreadyLiked):
		addFlash(c, h.Sessions, session.FlashError, "You already liked this post")
	case errors.Is(err, repository.ErrNotFound):
		return renderError(c, h.Sessions, http.StatusNotFound, "Post not found")
	case err != nil:
		c.Logger().Errorf("like failed: %v", err)
		addFlash(c, h.Sessions, session.FlashError, "Failed to like post")
	default:
		addFlash(c, h.Sessions, session.FlashSuccess, "Post liked!")
	}
	return c.Redirect(http.StatusFound, redirect)
}

// Unlike removes the viewer's like. Removing a like that was never
// placed is a no-op, so the flow is idempotent.
func (h *LikeHandler) Unlike(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return renderError(c, h.Sessions, http.StatusNotFound, "Post not found")
	}
	ident := middleware.IdentityFrom(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Likes.Unlike(ctx, ident.UserID, postID); err != nil {
		c.Logger().Errorf("unlike failed: %v", err)
		addFlash(c, h.Sessions, session.FlashError, "Failed to unlike post")
	} else {
		addFlash(c, h.Sessions, session.FlashSuccess, "Post unliked")
	}
	return c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", postID))
}

// Count returns {"like_count": n, "user_liked": bool} as JSON. Open to
// anonymous viewers, for whom user_liked is always false.
func (h *LikeHandler) Count(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	count, err := h.Likes.CountForPost(ctx, postID, middleware.ViewerID(c))
	if err != nil {
		c.Logger().Errorf("like count failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to get likes"})
	}
	return c.JSON(http.StatusOK, count)
}
