package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tanvir09/vidtube/backend/internal/models"
	"github.com/tanvir09/vidtube/backend/internal/services"
)

// ReactionHandler handles HTTP requests related to likes and dislikes
type ReactionHandler struct {
	reactionService services.ReactionService
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactionService services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// RegisterReactionRoutes registers reaction routes on the authenticated group
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/likes/:target_type/:target_id", h.React)
	g.GET("/likes/videos", h.GetLikedVideos)
}

// RegisterPublicReactionRoutes registers the read-only count route, usable
// without authentication (e.g. rendering a video page)
func (h *ReactionHandler) RegisterPublicReactionRoutes(g *echo.Group) {
	g.GET("/likes/:target_type/:target_id/counts", h.GetCounts)
}

// React toggles the authenticated user's reaction on a video, comment or tweet
func (h *ReactionHandler) React(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetType, err := models.ParseTargetType(c.Param("target_type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req models.ReactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	kind, err := models.ParseReactionKind(req.Kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.reactionService.React(c.Request().Context(), userID, targetType, c.Param("target_id"), kind)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTargetNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Target not found")
		case errors.Is(err, services.ErrInvalidKind), errors.Is(err, services.ErrInvalidTargetType):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrReactionConflict):
			return echo.NewHTTPError(http.StatusConflict, "Reaction is being modified concurrently, please retry")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, result)
}

// GetCounts retrieves live like/dislike totals for a target
func (h *ReactionHandler) GetCounts(c echo.Context) error {
	targetType, err := models.ParseTargetType(c.Param("target_type"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	counts, err := h.reactionService.Counts(c.Request().Context(), targetType, c.Param("target_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, counts)
}

// GetLikedVideos lists the videos the authenticated user has liked
func (h *ReactionHandler) GetLikedVideos(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	liked, err := h.reactionService.LikedVideos(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if liked == nil {
		liked = []models.Reaction{}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": liked})
}
