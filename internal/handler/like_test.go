package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/go-blog/internal/middleware"
	"github.com/iliyamo/go-blog/internal/repository"
	"github.com/iliyamo/go-blog/internal/session"
)

func newLikeHandler(t *testing.T) (*LikeHandler, sqlmock.Sqlmock, session.Store) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := session.NewMemoryStore(time.Hour)
	return NewLikeHandler(repository.NewLikeRepo(db), store), mock, store
}

func likeRequest(t *testing.T, store session.Store, token string, h echo.HandlerFunc, method, target, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, middleware.LoadSession(store)(h)(c))
	return rec
}

func TestLikeSetsSuccessFlashAndRedirects(t *testing.T) {
	h, mock, store := newLikeHandler(t)
	ctx := context.Background()
	token, err := store.Create(ctx, 7, "alice")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO likes")).
		WithArgs(7, 2).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := likeRequest(t, store, token, h.Like, http.MethodPost, "/posts/2/like", "2")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/2", rec.Header().Get("Location"))

	f, err := store.PopFlash(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Post liked!", f.Success)
}

func TestLikeDuplicateBecomesFlashNotFailure(t *testing.T) {
	h, mock, store := newLikeHandler(t)
	ctx := context.Background()
	token, err := store.Create(ctx, 7, "alice")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO likes")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '7-2' for key 'likes.uniq_likes_user_post'"))

	rec := likeRequest(t, store, token, h.Like, http.MethodPost, "/posts/2/like", "2")

	// Still a redirect back to the post, just with an error flash.
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/2", rec.Header().Get("Location"))

	f, err := store.PopFlash(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "You already liked this post", f.Error)
	assert.Empty(t, f.Success)
}

func TestUnlikeIsAlwaysSuccessful(t *testing.T) {
	h, mock, store := newLikeHandler(t)
	ctx := context.Background()
	token, err := store.Create(ctx, 7, "alice")
	require.NoError(t, err)

	// Nothing deleted; the flow still reports success.
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM likes")).
		WithArgs(7, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := likeRequest(t, store, token, h.Unlike, http.MethodPost, "/posts/2/unlike", "2")

	assert.Equal(t, http.StatusFound, rec.Code)
	f, err := store.PopFlash(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "Post unliked", f.Success)
}

func TestLikeCountJSONForAnonymousViewer(t *testing.T) {
	h, mock, store := newLikeHandler(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS like_count").
		WithArgs(2, 0, 2).
		WillReturnRows(sqlmock.NewRows([]string{"like_count", "user_liked"}).AddRow(3, 0))

	rec := likeRequest(t, store, "", h.Count, http.MethodGet, "/posts/2/likes", "2")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"like_count":3,"user_liked":false}`, rec.Body.String())
}
