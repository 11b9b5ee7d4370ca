package middleware

import (
	"net/http"

	"github.com/anonto42/recipe-share/backend/internal/session"
	"github.com/anonto42/recipe-share/backend/internal/tabs"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

const (
	TabCookie = "tab_id"

	tabKey   = "tab"
	stateKey = "viewer"
)

// Tabs attaches the browser's tab to the context when its cookie names a
// live one. Requests without a tab are served signed out; only OpenTab
// creates tabs.
func Tabs(registry *tabs.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(TabCookie); err == nil {
				if tab, ok := registry.Get(cookie.Value); ok {
					c.Set(tabKey, tab)
				}
			}
			return next(c)
		}
	}
}

// OpenTab gives a request without a tab a fresh one to sign in with. The
// tab is kept, and its cookie issued, only if it holds a session once the
// handler is done; otherwise it is torn down again. Visitors that never sign
// in therefore never take a registry slot.
func OpenTab(registry *tabs.Registry, secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentTab(c) != nil {
				return next(c)
			}

			tab, err := registry.Open(c.Request().Context())
			if err != nil {
				logger.Log.WithError(err).Error("open tab")
				return echo.NewHTTPError(http.StatusInternalServerError, "Could not start a session")
			}
			c.Set(tabKey, tab)

			kept := false
			keep := func() {
				if kept || !signedIn(c, tab) {
					return
				}
				kept = true
				c.SetCookie(&http.Cookie{
					Name:     TabCookie,
					Value:    tab.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}
			// The cookie has to be set before the handler writes its headers.
			c.Response().Before(keep)

			err = next(c)
			if !c.Response().Committed {
				keep()
			}
			if !kept {
				registry.Remove(tab.ID)
			}
			return err
		}
	}
}

func signedIn(c echo.Context, tab *tabs.Tab) bool {
	sess, err := tab.Auth.GetSession(c.Request().Context())
	return err == nil && sess != nil
}

// CurrentTab returns the tab of the request, or nil when it has none
func CurrentTab(c echo.Context) *tabs.Tab {
	tab, _ := c.Get(tabKey).(*tabs.Tab)
	return tab
}

// Viewer is the session state for the current request. Guards store the
// state they checked; elsewhere the tab's last known state is used.
func Viewer(c echo.Context) session.State {
	if s, ok := c.Get(stateKey).(session.State); ok {
		return s
	}
	if tab := CurrentTab(c); tab != nil {
		return tab.Session.State()
	}
	return session.State{}
}
