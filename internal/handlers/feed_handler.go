package handlers

import (
	"net/http"

	"github.com/anonto42/recipe-share/backend/internal/feed"
	"github.com/anonto42/recipe-share/backend/internal/mealdb"
	"github.com/anonto42/recipe-share/backend/internal/middleware"
	"github.com/anonto42/recipe-share/backend/internal/views"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the post lists
type FeedHandler struct {
	sync  *feed.Synchronizer
	meals *mealdb.Client
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(sync *feed.Synchronizer, meals *mealdb.Client) *FeedHandler {
	return &FeedHandler{sync: sync, meals: meals}
}

type feedPage struct {
	Posts  []feed.PostView
	Search string
	Sort   string
}

type inspirationPage struct {
	Ingredient string
	Meals      []mealdb.Meal
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/", h.Home)
	g.GET("/feed", h.GetFeed, middleware.RequireSession)
	g.GET("/myposts", h.MyPosts, middleware.RequireSession)
	g.GET("/inspiration", h.Inspiration, middleware.RequireSession)
}

func (h *FeedHandler) Home(c echo.Context) error {
	return render(c, http.StatusOK, "home", views.Page{Title: "Home"})
}

// GetFeed lists every post, newest first unless sort=asc, filtered by q
func (h *FeedHandler) GetFeed(c echo.Context) error {
	q := feed.Query{Search: c.QueryParam("q"), Sort: feed.ParseSort(c.QueryParam("sort"))}
	posts := h.sync.FetchList(c.Request().Context(), q, middleware.Viewer(c).UserID)

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, posts)
	}
	return render(c, http.StatusOK, "feed", views.Page{
		Title: "Feed",
		Data:  feedPage{Posts: posts, Search: q.Search, Sort: string(q.Sort)},
	})
}

// MyPosts lists the viewer's own posts, newest first
func (h *FeedHandler) MyPosts(c echo.Context) error {
	viewer := middleware.Viewer(c)
	posts := h.sync.FetchList(c.Request().Context(), feed.Query{UserID: viewer.UserID, Sort: feed.SortDesc}, viewer.UserID)
	return render(c, http.StatusOK, "myposts", views.Page{Title: "My posts", Data: feedPage{Posts: posts}})
}

// Inspiration shows TheMealDB dishes for an ingredient. Failures show an empty list.
func (h *FeedHandler) Inspiration(c echo.Context) error {
	ingredient := c.QueryParam("ingredient")
	if ingredient == "" {
		ingredient = mealdb.DefaultIngredient
	}

	meals, err := h.meals.ByIngredient(c.Request().Context(), ingredient)
	if err != nil {
		logger.Log.WithError(err).WithField("ingredient", ingredient).Warn("fetch meals failed, showing empty list")
		meals = []mealdb.Meal{}
	}
	return render(c, http.StatusOK, "inspiration", views.Page{
		Title: "Inspiration",
		Data:  inspirationPage{Ingredient: ingredient, Meals: meals},
	})
}
