package router

import (
	"github.com/anonto42/recipe-share/backend/internal/feed"
	"github.com/anonto42/recipe-share/backend/internal/flows"
	"github.com/anonto42/recipe-share/backend/internal/handlers"
	"github.com/anonto42/recipe-share/backend/internal/mealdb"
	"github.com/anonto42/recipe-share/backend/internal/middleware"
	"github.com/anonto42/recipe-share/backend/internal/repositories"
	"github.com/anonto42/recipe-share/backend/internal/storage"
	"github.com/anonto42/recipe-share/backend/internal/tabs"
	"github.com/anonto42/recipe-share/backend/internal/views"
	"github.com/anonto42/recipe-share/backend/pkg/config"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// Deps are the services the routes are wired to
type Deps struct {
	Users repositories.UserRepository
	Posts repositories.PostRepository
	Likes repositories.LikeRepository

	Tabs  *tabs.Registry
	Store storage.Store
	Meals *mealdb.Client

	// MediaDir is served under /media when files are stored locally.
	MediaDir        string
	FirebaseEnabled bool
	SecureCookies   bool
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) error {
	renderer, err := views.NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer

	config.SetupMiddleware(e)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)
	if deps.MediaDir != "" {
		e.Static("/media", deps.MediaDir)
		logger.Log.WithField("dir", deps.MediaDir).Info("Serving local media.")
	}

	sync := feed.NewSynchronizer(deps.Posts, deps.Users, deps.Likes)
	mutations := flows.New(deps.Users, deps.Posts, deps.Store)

	// Pages run inside the browser's tab when it has one.
	pages := e.Group("", middleware.Tabs(deps.Tabs))
	openTab := middleware.OpenTab(deps.Tabs, deps.SecureCookies)

	handlers.NewAuthHandler(mutations, deps.FirebaseEnabled, openTab).RegisterAuthRoutes(pages)
	handlers.NewFeedHandler(sync, deps.Meals).RegisterFeedRoutes(pages)
	handlers.NewPostHandler(sync, mutations, deps.Posts).RegisterPostRoutes(pages)
	handlers.NewLikeHandler(sync).RegisterLikeRoutes(pages)
	handlers.NewUserHandler(sync, mutations).RegisterProfileRoutes(pages)
	handlers.NewAdminHandler(sync, deps.Posts, deps.Users).RegisterAdminRoutes(pages.Group("/admin"))
	pages.GET("/session/stream", handlers.SessionStream)

	logger.Log.Info("All routes configured.")
	return nil
}
