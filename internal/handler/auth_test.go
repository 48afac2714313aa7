package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/go-blog/internal/config"
	"github.com/iliyamo/go-blog/internal/middleware"
	"github.com/iliyamo/go-blog/internal/repository"
	"github.com/iliyamo/go-blog/internal/service"
	"github.com/iliyamo/go-blog/internal/session"
	"github.com/iliyamo/go-blog/internal/utils"
)

// captureRenderer records the template name and data of the last render
// so tests can assert on handler output without parsing HTML.
type captureRenderer struct {
	name string
	data map[string]interface{}
}

func (r *captureRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	r.name = name
	r.data, _ = data.(map[string]interface{})
	return nil
}

func testConfig() config.Config {
	return config.Config{Env: "test", SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost}
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, session.Store) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := session.NewMemoryStore(time.Hour)
	creds := service.NewCredentialService(repository.NewUserRepo(db), bcrypt.MinCost)
	return NewAuthHandler(testConfig(), creds, store), mock, store
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

// serve runs the handler behind LoadSession so the request goes through
// the same cookie resolution as production traffic.
func serve(t *testing.T, store session.Store, renderer *captureRenderer, req *http.Request, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	if renderer != nil {
		e.Renderer = renderer
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, middleware.LoadSession(store)(h)(c))
	return rec
}

func TestRegisterRerendersWithAllProblems(t *testing.T) {
	h, mock, store := newAuthHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	renderer := &captureRenderer{}
	req := formRequest("/auth/register", url.Values{
		"username":        {"ab"},
		"email":           {"ab@example.com"},
		"password":        {"short"},
		"confirmPassword": {"different"},
	})
	rec := serve(t, store, renderer, req, h.Register)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "register", renderer.name)
	assert.ElementsMatch(t, []string{
		"Passwords do not match",
		"Password must be at least 6 characters long",
		"Username must be at least 3 characters long",
	}, renderer.data["Errors"])
	// Prior input comes back, passwords never do.
	assert.Equal(t, map[string]string{"username": "ab", "email": "ab@example.com"}, renderer.data["FormData"])
}

func TestRegisterSuccessStartsSession(t *testing.T) {
	h, mock, store := newAuthHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(7, 1))

	req := formRequest("/auth/register", url.Values{
		"username":        {"alice"},
		"email":           {"alice@example.com"},
		"password":        {"secret123"},
		"confirmPassword": {"secret123"},
	})
	rec := serve(t, store, nil, req, h.Register)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ident, err := store.Resolve(context.Background(), cookies[0].Value)
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, uint64(7), ident.UserID)
	assert.Equal(t, "alice", ident.Username)
}

func TestLoginInvalidCredentials(t *testing.T) {
	h, mock, store := newAuthHandler(t)

	mock.ExpectQuery("SELECT id,username,email,password_hash").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "password_hash", "bio", "avatar_url", "created_at"}))

	renderer := &captureRenderer{}
	req := formRequest("/auth/login", url.Values{
		"username": {"nobody"},
		"password": {"whatever"},
	})
	rec := serve(t, store, renderer, req, h.Login)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login", renderer.name)
	assert.Equal(t, []string{"Invalid credentials"}, renderer.data["Errors"])
}

func TestLoginRotatesSessionAndHonorsReturnTarget(t *testing.T) {
	h, mock, store := newAuthHandler(t)
	ctx := context.Background()

	// A guest session left behind by the auth guard, carrying the page
	// the user originally asked for.
	oldToken, err := store.Create(ctx, 0, "")
	require.NoError(t, err)
	require.NoError(t, store.SetReturnTo(ctx, oldToken, "/posts/new"))

	hash, err := utils.HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT id,username,email,password_hash").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "password_hash", "bio", "avatar_url", "created_at"}).
			AddRow(3, "alice", "alice@example.com", hash, nil, nil, time.Now()))

	req := formRequest("/auth/login", url.Values{
		"username": {"alice"},
		"password": {"secret123"},
	})
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: oldToken})
	rec := serve(t, store, nil, req, h.Login)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts/new", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	newToken := cookies[0].Value
	assert.NotEqual(t, oldToken, newToken, "login must rotate the session token")

	ident, err := store.Resolve(ctx, newToken)
	require.NoError(t, err)
	require.NotNil(t, ident)
	assert.Equal(t, "alice", ident.Username)

	// The pre-auth session is gone: a fixated token never upgrades.
	ident, err = store.Resolve(ctx, oldToken)
	require.NoError(t, err)
	assert.Nil(t, ident)
}

func TestLogoutDestroysSessionAndClearsCookie(t *testing.T) {
	h, _, store := newAuthHandler(t)
	ctx := context.Background()

	token, err := store.Create(ctx, 3, "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	rec := serve(t, store, nil, req, h.Logout)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge)

	ident, err := store.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, ident)
}
