package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/tanvir09/vidtube/backend/internal/models"
	"github.com/tanvir09/vidtube/backend/internal/realtime"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// RealtimeHandler upgrades authenticated clients to websocket connections and
// hands them to the hub
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler creates a new RealtimeHandler
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// RegisterRealtimeRoutes registers the websocket endpoint
func (h *RealtimeHandler) RegisterRealtimeRoutes(g *echo.Group) {
	g.GET("/ws", h.Subscribe)
}

// Subscribe opens a websocket subscribed to the requested channels. The
// `channels` query param is a comma-separated list of counter channels
// ("reactions:video:<id>") plus the keyword "notifications" for the user's
// private feed. Only the caller's own notification channel can be joined.
func (h *RealtimeHandler) Subscribe(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var channels []string
	for _, raw := range strings.Split(c.QueryParam("channels"), ",") {
		name := strings.TrimSpace(raw)
		switch {
		case name == "":
			continue
		case name == "notifications":
			channels = append(channels, realtime.NotificationChannel(userID))
		case isCountsChannel(name):
			channels = append(channels, name)
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "Unknown channel: "+name)
		}
	}
	if len(channels) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one channel is required")
	}

	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.hub.Serve(conn, userID, channels)
	return nil
}

// isCountsChannel reports whether a channel name is a well-formed counter
// channel for a known target type
func isCountsChannel(name string) bool {
	parts := strings.Split(name, ":")
	if len(parts) != 3 || parts[0] != "reactions" || parts[2] == "" {
		return false
	}
	_, err := models.ParseTargetType(parts[1])
	return err == nil
}
