package middleware

import (
	"net/http"

	"github.com/anonto42/recipe-share/backend/internal/session"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// currentSession asks the tab's auth client for its session. Lookup errors
// count as signed out.
func currentSession(c echo.Context) (session.State, bool) {
	tab := CurrentTab(c)
	if tab == nil {
		return session.State{}, false
	}
	sess, err := tab.Auth.GetSession(c.Request().Context())
	if err != nil {
		logger.Log.WithError(err).WithField("tab", tab.ID).Debug("session lookup failed")
		return session.State{}, false
	}
	state := tab.Session.Resolve(sess)
	c.Set(stateKey, state)
	return state, state.LoggedIn
}

// RequireSession redirects visitors without a session to /login before the
// handler runs. It only gates rendering; the handlers check ownership again.
func RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := currentSession(c); !ok {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		return next(c)
	}
}

// RequireGuest sends signed-in visitors of the login and register pages to /feed
func RequireGuest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := currentSession(c); ok {
			return c.Redirect(http.StatusSeeOther, "/feed")
		}
		return next(c)
	}
}

// RequireAdmin lets only the admin through; everyone else goes to /.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if state, _ := currentSession(c); !state.IsAdmin {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return next(c)
	}
}
