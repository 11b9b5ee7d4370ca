package handlers

import (
	"net/http"

	"github.com/anonto42/recipe-share/backend/internal/flows"
	"github.com/anonto42/recipe-share/backend/internal/middleware"
	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/views"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// AuthHandler serves login, registration and logout
type AuthHandler struct {
	flows           *flows.Flows
	firebaseEnabled bool
	openTab         echo.MiddlewareFunc
}

// NewAuthHandler creates a new AuthHandler. openTab runs in front of the
// routes that sign a tab in.
func NewAuthHandler(f *flows.Flows, firebaseEnabled bool, openTab echo.MiddlewareFunc) *AuthHandler {
	return &AuthHandler{flows: f, firebaseEnabled: firebaseEnabled, openTab: openTab}
}

type loginPage struct {
	Email           string
	FirebaseEnabled bool
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.GET("/login", h.LoginForm, middleware.RequireGuest)
	g.POST("/login", h.Login, middleware.RequireGuest, h.openTab)
	g.POST("/login/firebase", h.FirebaseLogin, middleware.RequireGuest, h.openTab)
	g.GET("/register", h.RegisterForm, middleware.RequireGuest)
	g.POST("/register", h.Register, middleware.RequireGuest, h.openTab)
	g.GET("/logout", h.Logout)
}

func (h *AuthHandler) LoginForm(c echo.Context) error {
	return render(c, http.StatusOK, "login", views.Page{Title: "Log in", Data: loginPage{FirebaseEnabled: h.firebaseEnabled}})
}

// Login signs the tab in with email and password
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if msg := bindForm(c, &req); msg != "" {
		return h.loginFailed(c, req.Email, msg)
	}

	tab := middleware.CurrentTab(c)
	if _, err := tab.Auth.SignInWithPassword(c.Request().Context(), req.Email, req.Password); err != nil {
		return h.loginFailed(c, req.Email, userMessage(err))
	}

	logger.Log.WithField("tab", tab.ID).Info("user signed in")
	return c.Redirect(http.StatusSeeOther, "/feed")
}

// FirebaseLogin exchanges a Firebase ID token for a session
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	idToken := c.FormValue("id_token")
	if idToken == "" {
		return h.loginFailed(c, "", "Missing ID token.")
	}

	tab := middleware.CurrentTab(c)
	if _, err := tab.Auth.SignInWithIDToken(c.Request().Context(), idToken); err != nil {
		return h.loginFailed(c, "", userMessage(err))
	}
	return c.Redirect(http.StatusSeeOther, "/feed")
}

func (h *AuthHandler) loginFailed(c echo.Context, email, msg string) error {
	return render(c, http.StatusUnauthorized, "login", views.Page{
		Title: "Log in",
		Error: msg,
		Data:  loginPage{Email: email, FirebaseEnabled: h.firebaseEnabled},
	})
}

func (h *AuthHandler) RegisterForm(c echo.Context) error {
	return render(c, http.StatusOK, "register", views.Page{Title: "Register", Data: models.RegisterRequest{}})
}

// Register creates the account and profile, then signs the tab in
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if msg := bindForm(c, &req); msg != "" {
		return h.registerFailed(c, req, msg)
	}

	avatar, closeAvatar, err := readUpload(c, "avatar")
	if err != nil {
		return h.registerFailed(c, req, "Could not read the uploaded picture.")
	}
	defer closeAvatar()

	out, err := h.flows.Register(c.Request().Context(), middleware.CurrentTab(c).Auth, req, avatar)
	if err != nil {
		return h.registerFailed(c, req, userMessage(err))
	}
	return c.Redirect(http.StatusSeeOther, out.Redirect)
}

func (h *AuthHandler) registerFailed(c echo.Context, req models.RegisterRequest, msg string) error {
	req.Password = ""
	return render(c, http.StatusUnprocessableEntity, "register", views.Page{Title: "Register", Error: msg, Data: req})
}

// Logout signs the tab out and shows the logged-out page
func (h *AuthHandler) Logout(c echo.Context) error {
	if tab := middleware.CurrentTab(c); tab != nil {
		if err := tab.Auth.SignOut(c.Request().Context()); err != nil {
			logger.Log.WithError(err).Warn("sign out failed")
		}
	}
	// Rendered without a viewer: the tab's manager may not have seen the sign out yet.
	return c.Render(http.StatusOK, "logout", views.Page{Title: "Logged out"})
}
