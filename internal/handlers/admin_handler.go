package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/recipe-share/backend/internal/feed"
	"github.com/anonto42/recipe-share/backend/internal/middleware"
	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/internal/views"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves the moderation panel
type AdminHandler struct {
	sync           *feed.Synchronizer
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(sync *feed.Synchronizer, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *AdminHandler {
	return &AdminHandler{sync: sync, postRepository: postRepo, userRepository: userRepo}
}

type adminPage struct {
	Posts []feed.PostView
	Users []models.User
}

// RegisterAdminRoutes registers the admin-only routes
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.Use(middleware.RequireAdmin)
	g.GET("", h.Dashboard)
	g.POST("/posts/:id/delete", h.DeletePost)
	g.POST("/users/:id/delete", h.DeleteUser)
}

func (h *AdminHandler) Dashboard(c echo.Context) error {
	return h.dashboard(c, http.StatusOK, "", "")
}

func (h *AdminHandler) dashboard(c echo.Context, status int, errMsg, success string) error {
	ctx := c.Request().Context()
	viewer := middleware.Viewer(c)
	return render(c, status, "admin", views.Page{
		Title:   "Admin",
		Error:   errMsg,
		Success: success,
		Data: adminPage{
			Posts: h.sync.FetchList(ctx, feed.Query{Sort: feed.SortDesc}, viewer.UserID),
			Users: h.sync.FetchUsers(ctx),
		},
	})
}

func (h *AdminHandler) DeletePost(c echo.Context) error {
	id := c.Param("id")
	if err := h.postRepository.DeletePost(c.Request().Context(), id); err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return h.dashboard(c, http.StatusNotFound, "Post not found.", "")
		}
		logger.Log.WithError(err).WithField("post_id", id).Warn("admin delete post failed")
		return h.dashboard(c, http.StatusInternalServerError, "Deleting post failed: "+err.Error(), "")
	}
	logger.Log.WithField("post_id", id).Info("post deleted by admin")
	return c.Redirect(http.StatusSeeOther, "/admin")
}

// DeleteUser removes a profile only. Posts and likes are not cascaded; when
// the store refuses because of them, the error is shown.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	if err := h.userRepository.DeleteUser(c.Request().Context(), id); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return h.dashboard(c, http.StatusNotFound, "User not found.", "")
		}
		logger.Log.WithError(err).WithField("user_id", id).Warn("admin delete user failed")
		return h.dashboard(c, http.StatusConflict, "Deleting user failed: "+err.Error(), "")
	}
	logger.Log.WithField("user_id", id).Info("user deleted by admin")
	return c.Redirect(http.StatusSeeOther, "/admin")
}
