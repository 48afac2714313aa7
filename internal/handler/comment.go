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

// CommentHandler adds and deletes comments. Deletion authorization
// (author or post owner) is enforced by the ownership guard before
// Delete runs; the handler only needs the parent post id back for the
// redirect.
type CommentHandler struct {
	Comments *repository.CommentRepo
	Sessions session.Store
}

func NewCommentHandler(comments *repository.CommentRepo, sessions session.Store) *CommentHandler {
	return &CommentHandler{Comments: comments, Sessions: sessions}
}

// Create adds a comment to the post in the :id parameter. Empty content
// is a validation failure surfaced as a flash on the post page.
func (h *CommentHandler) Create(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return renderError(c, h.Sessions, http.StatusNotFound, "Post not found")
	}
	ident := middleware.IdentityFrom(c)
	redirect := fmt.Sprintf("/posts/%d", postID)

	ctx, cancel := reqCtx(c)
	defer cancel()

	_, err = h.Comments.Create(ctx, postID, ident.UserID, c.FormValue("content"))
	var verr *repository.ValidationError
	switch {
	case errors.As(err, &verr):
		addFlash(c, h.Sessions, session.FlashError, verr.Problems[0])
	case errors.Is(err, repository.ErrNotFound):
		return renderError(c, h.Sessions, http.StatusNotFound, "Post not found")
	case err != nil:
		c.Logger().Errorf("add comment failed: %v", err)
		addFlash(c, h.Sessions, session.FlashError, "Failed to add comment")
	default:
		addFlash(c, h.Sessions, session.FlashSuccess, "Comment added successfully!")
	}
	return c.Redirect(http.StatusFound, redirect)
}

// Delete removes the comment in the :id parameter and returns to the
// parent post. The guard has already checked the dual-ownership rule.
func (h *CommentHandler) Delete(c echo.Context) error {
	commentID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	ctx, cancel := reqCtx(c)
	defer cancel()

	own, err := h.Comments.Owners(ctx, commentID)
	if errors.Is(err, repository.ErrNotFound) {
		return renderError(c, h.Sessions, http.StatusNotFound, "Comment not found")
	}
	if err != nil {
		return serverError(c, h.Sessions, err)
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		return serverError(c, h.Sessions, err)
	}
	addFlash(c, h.Sessions, session.FlashSuccess, "Comment deleted successfully!")
	return c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", own.PostID))
}
