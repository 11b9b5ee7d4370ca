package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/recipe-share/backend/internal/feed"
	"github.com/anonto42/recipe-share/backend/internal/flows"
	"github.com/anonto42/recipe-share/backend/internal/middleware"
	"github.com/anonto42/recipe-share/backend/internal/models"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/internal/views"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	sync           *feed.Synchronizer
	flows          *flows.Flows
	postRepository repositories.PostRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(sync *feed.Synchronizer, f *flows.Flows, postRepo repositories.PostRepository) *PostHandler {
	return &PostHandler{sync: sync, flows: f, postRepository: postRepo}
}

type postPage struct {
	Post      *feed.PostView
	CanDelete bool
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/create-post", h.CreatePostForm, middleware.RequireSession)
	g.POST("/create-post", h.CreatePost, middleware.RequireSession)
	g.GET("/post/:id", h.GetPost)
	g.POST("/post/:id/delete", h.DeletePost, middleware.RequireSession)
}

func (h *PostHandler) CreatePostForm(c echo.Context) error {
	return render(c, http.StatusOK, "create_post", views.Page{Title: "Add a dish", Data: models.CreatePostRequest{}})
}

// CreatePost runs the create-post flow. On success the page shows the
// message and refreshes to the feed after the flow's delay.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if msg := bindForm(c, &req); msg != "" {
		return h.createFailed(c, req, msg)
	}
	if !req.IsOwnRecipe && req.RecipeLink == "" {
		return h.createFailed(c, req, "Add a link to the recipe or mark it as your own.")
	}

	photo, closePhoto, err := readUpload(c, "photo")
	if err != nil {
		return h.createFailed(c, req, "Could not read the uploaded photo.")
	}
	defer closePhoto()

	out, err := h.flows.CreatePost(c.Request().Context(), middleware.CurrentTab(c).Auth, req, photo)
	if err != nil {
		return h.createFailed(c, req, userMessage(err))
	}

	c.Response().Header().Set("Refresh", fmt.Sprintf("%d; url=%s", int(out.Delay.Seconds()), out.Redirect))
	return render(c, http.StatusCreated, "create_post", views.Page{
		Title:   "Add a dish",
		Success: out.Message,
		Data:    models.CreatePostRequest{},
	})
}

func (h *PostHandler) createFailed(c echo.Context, req models.CreatePostRequest, msg string) error {
	return render(c, http.StatusUnprocessableEntity, "create_post", views.Page{Title: "Add a dish", Error: msg, Data: req})
}

// GetPost shows one post with its like state
func (h *PostHandler) GetPost(c echo.Context) error {
	viewer := middleware.Viewer(c)
	post, err := h.sync.FetchPost(c.Request().Context(), c.Param("id"), viewer.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return notFound(c, "Post")
		}
		logger.Log.WithError(err).Error("fetch post")
		return echo.NewHTTPError(http.StatusInternalServerError, genericError)
	}

	return render(c, http.StatusOK, "post", views.Page{
		Title: post.DishName,
		Data:  postPage{Post: post, CanDelete: viewer.IsAdmin || (viewer.LoggedIn && viewer.UserID == post.UserID)},
	})
}

// DeletePost deletes a post of the viewer; the admin may delete any post.
func (h *PostHandler) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := middleware.Viewer(c)
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repositories.ErrPostNotFound) {
			return notFound(c, "Post")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, userMessage(err))
	}
	if post.UserID != viewer.UserID && !viewer.IsAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own posts")
	}

	if err := h.postRepository.DeletePost(ctx, postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Deleting post failed: "+err.Error())
	}
	logger.Log.WithField("post_id", postID).Info("post deleted")
	return c.Redirect(http.StatusSeeOther, "/myposts")
}
