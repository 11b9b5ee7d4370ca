package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/recipe-share/backend/internal/feed"
	"github.com/anonto42/recipe-share/backend/internal/flows"
	"github.com/anonto42/recipe-share/backend/internal/middleware"
	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/internal/views"
	"github.com/labstack/echo/v4"
)

// UserHandler serves profiles
type UserHandler struct {
	sync  *feed.Synchronizer
	flows *flows.Flows
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(sync *feed.Synchronizer, f *flows.Flows) *UserHandler {
	return &UserHandler{sync: sync, flows: f}
}

type userPage struct {
	User  *models.User
	Posts []feed.PostView
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile, middleware.RequireSession)
	g.POST("/profile", h.UpdateProfile, middleware.RequireSession)
	g.GET("/user/:id", h.GetUser)
}

// GetProfile shows the edit form of the viewer's own profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.sync.FetchUser(c.Request().Context(), middleware.Viewer(c).UserID)
	if err != nil {
		return render(c, http.StatusOK, "profile", views.Page{
			Title: "Profile",
			Error: "Could not load user data.",
			Data:  models.User{},
		})
	}
	return render(c, http.StatusOK, "profile", views.Page{Title: "Profile", Data: *user})
}

// UpdateProfile runs the profile flow and shows the form again
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := middleware.Viewer(c)

	var req models.UpdateProfileRequest
	failed := func(msg string) error {
		form := models.User{ID: viewer.UserID, DisplayName: req.DisplayName, City: req.City, Age: req.Age}
		if current, err := h.sync.FetchUser(ctx, viewer.UserID); err == nil {
			form.AvatarURL = current.AvatarURL
		}
		return render(c, http.StatusUnprocessableEntity, "profile", views.Page{Title: "Profile", Error: msg, Data: form})
	}

	if msg := bindForm(c, &req); msg != "" {
		return failed(msg)
	}
	avatar, closeAvatar, err := readUpload(c, "avatar")
	if err != nil {
		return failed("Could not read the uploaded picture.")
	}
	defer closeAvatar()

	out, err := h.flows.UpdateProfile(ctx, middleware.CurrentTab(c).Auth, req, avatar)
	if err != nil {
		return failed(userMessage(err))
	}

	user, err := h.sync.FetchUser(ctx, viewer.UserID)
	if err != nil {
		return failed("Could not load user data.")
	}
	return render(c, http.StatusOK, "profile", views.Page{Title: "Profile", Success: out.Message, Data: *user})
}

// GetUser shows a profile with that user's posts, newest first
func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	user, err := h.sync.FetchUser(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return notFound(c, "User")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, userMessage(err))
	}

	posts := h.sync.FetchList(ctx, feed.Query{UserID: user.ID, Sort: feed.SortDesc}, middleware.Viewer(c).UserID)
	return render(c, http.StatusOK, "user", views.Page{
		Title: user.DisplayName,
		Data:  userPage{User: user, Posts: posts},
	})
}
