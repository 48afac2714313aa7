package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/go-blog/internal/middleware"
	"github.com/iliyamo/go-blog/internal/repository"
	"github.com/iliyamo/go-blog/internal/session"
	"github.com/iliyamo/go-blog/internal/storage"
)

// PostHandler serves the post listing, detail, and the owner-gated
// create/edit/delete flows. Ownership is enforced by the guard
// middleware before Update/Delete/Edit ever run.
type PostHandler struct {
	Posts    *repository.PostRepo
	Uploads  *storage.Uploader
	Sessions session.Store
}

func NewPostHandler(posts *repository.PostRepo, uploads *storage.Uploader, sessions session.Store) *PostHandler {
	return &PostHandler{Posts: posts, Uploads: uploads, Sessions: sessions}
}

// Index lists all posts with their aggregates, scoped to the viewer so
// "you liked this" renders correctly. Anonymous viewers see the same
// list with every liked flag false.
func (h *PostHandler) Index(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	posts, err := h.Posts.ListWithAggregates(ctx, middleware.ViewerID(c))
	if err != nil {
		return serverError(c, h.Sessions, err)
	}
	data := page(c, h.Sessions, "Latest Posts")
	data["Posts"] = posts
	return c.Render(http.StatusOK, "index", data)
}

// New renders the post creation form.
func (h *PostHandler) New(c echo.Context) error {
	data := page(c, h.Sessions, "New Post")
	data["FormData"] = map[string]string{}
	return c.Render(http.StatusOK, "new-post", data)
}

// Create stores a new post owned by the authenticated user. The image
// is validated and written to blob storage before the row is inserted,
// so a rejected upload leaves no orphan post behind.
func (h *PostHandler) Create(c echo.Context) error {
	ident := middleware.IdentityFrom(c)
	title := strings.TrimSpace(c.FormValue("title"))
	content := strings.TrimSpace(c.FormValue("content"))

	if title == "" || content == "" {
		data := page(c, h.Sessions, "New Post")
		data["Errors"] = []string{"Title and content are required"}
		data["FormData"] = map[string]string{"title": title, "content": content}
		return c.Render(http.StatusOK, "new-post", data)
	}

	imageURL, err := h.saveOptionalImage(c)
	if err != nil {
		data := page(c, h.Sessions, "New Post")
		data["Errors"] = []string{err.Error()}
		data["FormData"] = map[string]string{"title": title, "content": content}
		return c.Render(http.StatusOK, "new-post", data)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	postID, err := h.Posts.Create(ctx, ident.UserID, title, content, imageURL)
	if err != nil {
		return serverError(c, h.Sessions, err)
	}
	addFlash(c, h.Sessions, session.FlashSuccess, "Post published!")
	return c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", postID))
}

// Show renders a single post with its comments and aggregates.
func (h *PostHandler) Show(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return renderError(c, h.Sessions, http.StatusNotFound, "Post not found")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Posts.GetDetail(ctx, postID, middleware.ViewerID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return renderError(c, h.Sessions, http.StatusNotFound, "Post not found")
	}
	if err != nil {
		return serverError(c, h.Sessions, err)
	}
	data := page(c, h.Sessions, detail.Title)
	data["Post"] = detail
	return c.Render(http.StatusOK, "post", data)
}

// Edit renders the edit form for the post owner. The stored image
// reference is echoed into a hidden field so an update without a new
// upload preserves it exactly.
func (h *PostHandler) Edit(c echo.Context) error {
	postID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	ctx, cancel := reqCtx(c)
	defer cancel()

	post, err := h.Posts.Get(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return renderError(c, h.Sessions, http.StatusNotFound, "Post not found")
	}
	if err != nil {
		return serverError(c, h.Sessions, err)
	}
	data := page(c, h.Sessions, "Edit Post")
	data["Post"] = post
	return c.Render(http.StatusOK, "edit-post", data)
}

// Update rewrites the post. When no new image was uploaded, the hidden
// existingImage field carries the prior reference; the repository never
// looks it up implicitly.
func (h *PostHandler) Update(c echo.Context) error {
	postID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	title := strings.TrimSpace(c.FormValue("title"))
	content := strings.TrimSpace(c.FormValue("content"))
	imageURL := c.FormValue("existingImage")

	if uploaded, err := h.saveOptionalImage(c); err != nil {
		addFlash(c, h.Sessions, session.FlashError, err.Error())
		return c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/edit", postID))
	} else if uploaded != "" {
		imageURL = uploaded
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Posts.Update(ctx, postID, title, content, imageURL); err != nil {
		return serverError(c, h.Sessions, err)
	}
	addFlash(c, h.Sessions, session.FlashSuccess, "Post updated!")
	return c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d", postID))
}

// Delete removes the post; comments and likes cascade in the schema.
func (h *PostHandler) Delete(c echo.Context) error {
	postID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Posts.Delete(ctx, postID); err != nil {
		return serverError(c, h.Sessions, err)
	}
	addFlash(c, h.Sessions, session.FlashSuccess, "Post deleted")
	return c.Redirect(http.StatusFound, "/")
}

// About renders the static about page.
func (h *PostHandler) About(c echo.Context) error {
	return c.Render(http.StatusOK, "about", page(c, h.Sessions, "About"))
}

// saveOptionalImage stores the "image" form file when present. A
// missing file is not an error; it simply returns "".
func (h *PostHandler) saveOptionalImage(c echo.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		return "", nil // no file field in the form
	}
	return h.Uploads.SavePostImage(fh)
}
