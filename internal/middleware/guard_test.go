package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/recipe-share/backend/internal/auth"
	"github.com/anonto42/recipe-share/backend/internal/middleware"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/internal/tabs"
	"github.com/anonto42/recipe-share/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	e        *echo.Echo
	registry *tabs.Registry
	adminID  string
	userID   string
	calls    int
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	svc := auth.NewService(repositories.NewPostgresCredentialRepository(db), "secret", time.Hour, 24*time.Hour)
	ctx := context.Background()
	admin, err := svc.SignUp(ctx, "admin@example.com", "hunter22")
	require.NoError(t, err)
	user, err := svc.SignUp(ctx, "user@example.com", "hunter22")
	require.NoError(t, err)

	registry, err := tabs.NewRegistry(8, svc, admin.ID)
	require.NoError(t, err)
	t.Cleanup(registry.Purge)

	f := &fixture{e: echo.New(), registry: registry, adminID: admin.ID, userID: user.ID}
	handler := func(c echo.Context) error {
		f.calls++
		return c.String(http.StatusOK, middleware.Viewer(c).UserID)
	}

	g := f.e.Group("", middleware.Tabs(registry))
	g.GET("/feed", handler, middleware.RequireSession)
	g.GET("/login", handler, middleware.RequireGuest)
	g.GET("/admin", handler, middleware.RequireAdmin)
	g.GET("/", handler)
	g.POST("/signin", func(c echo.Context) error {
		tab := middleware.CurrentTab(c)
		if _, err := tab.Auth.SignInWithPassword(c.Request().Context(), c.QueryParam("email"), "hunter22"); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		return c.Redirect(http.StatusSeeOther, "/feed")
	}, middleware.OpenTab(registry, false))
	return f
}

func (f *fixture) post(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) get(path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

// signedIn opens a tab and signs it in as email
func (f *fixture) signedIn(t *testing.T, email string) *http.Cookie {
	tab, err := f.registry.Open(context.Background())
	require.NoError(t, err)
	if email != "" {
		_, err = tab.Auth.SignInWithPassword(context.Background(), email, "hunter22")
		require.NoError(t, err)
	}
	return &http.Cookie{Name: middleware.TabCookie, Value: tab.ID}
}

func TestTabs_AnonymousRequestsOpenNoTab(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Zero(t, f.registry.Len())

	rec = f.get("/", &http.Cookie{Name: middleware.TabCookie, Value: "stale"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Zero(t, f.registry.Len())
}

func TestTabs_ReusesKnownTab(t *testing.T) {
	f := newFixture(t)
	cookie := f.signedIn(t, "user@example.com")

	rec := f.get("/feed", cookie)
	assert.Equal(t, f.userID, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 1, f.registry.Len())
}

func TestOpenTab_KeepsSignedInTab(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/signin?email=user@example.com")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.TabCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 1, f.registry.Len())

	rec = f.get("/feed", cookies[0])
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, f.userID, rec.Body.String())
}

func TestOpenTab_DropsTabWithoutSession(t *testing.T) {
	f := newFixture(t)

	rec := f.post("/signin?email=nobody@example.com")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Zero(t, f.registry.Len())
}

func TestRequireSession(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/feed", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, rec.Body.String())
	assert.Zero(t, f.calls)

	rec = f.get("/feed", f.signedIn(t, "user@example.com"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, f.userID, rec.Body.String())
	assert.Equal(t, 1, f.calls)
}

func TestRequireGuest(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/login", f.signedIn(t, ""))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.get("/login", f.signedIn(t, "user@example.com"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/feed", rec.Header().Get(echo.HeaderLocation))
}

func TestRequireAdmin(t *testing.T) {
	f := newFixture(t)

	rec := f.get("/admin", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = f.get("/admin", f.signedIn(t, "user@example.com"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = f.get("/admin", f.signedIn(t, "admin@example.com"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, f.adminID, rec.Body.String())
}
