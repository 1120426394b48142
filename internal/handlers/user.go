package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tanvir09/vidtube/backend/internal/repositories"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetMe)
}

// GetMe returns the authenticated user's profile
func (h *UserHandler) GetMe(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}
