package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/recipe-share/backend/internal/feed"
	"github.com/anonto42/recipe-share/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	sync *feed.Synchronizer
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(sync *feed.Synchronizer) *LikeHandler {
	return &LikeHandler{sync: sync}
}

type likeResponse struct {
	feed.LikeState
	Error string `json:"error,omitempty"`
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/post/:id/like", h.ToggleLike, middleware.RequireSession)
}

// ToggleLike flips the viewer's like using the state the page showed
// ("liked" form value) and answers with the refreshed state, or sends the
// browser back to the page it came from.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	liked, _ := strconv.ParseBool(c.FormValue("liked"))
	state, err := h.sync.ToggleLike(c.Request().Context(), middleware.Viewer(c).UserID, c.Param("id"), liked)

	if wantsJSON(c) {
		resp := likeResponse{LikeState: state}
		if err != nil {
			resp.Error = err.Error()
		}
		return c.JSON(http.StatusOK, resp)
	}
	return back(c, "/feed")
}
