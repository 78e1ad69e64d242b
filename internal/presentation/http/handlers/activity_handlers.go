// Package handlers provides the websocket handler for the live activity feed.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/luminor-ai/luminor-go/internal/infrastructure/messaging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/presentation/http/middleware"
)

// upgrader promotes activity feed requests to websockets. Origins are not
// re-checked here; the session middleware has already authenticated the
// request.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ActivityHandlers contains the live activity feed handler
type ActivityHandlers struct {
	broadcaster *messaging.ActivityBroadcaster
	logger      *logging.ChanneledLogger
}

// NewActivityHandlers creates activity handlers with injected dependencies
func NewActivityHandlers(broadcaster *messaging.ActivityBroadcaster, logger *logging.ChanneledLogger) *ActivityHandlers {
	return &ActivityHandlers{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// GetActivityLive handles GET /api/v1/activity/live - upgrades the request
// to a websocket carrying activity events and periodic aggregate snapshots
func (h *ActivityHandlers) GetActivityLive(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Activity().Error("Websocket upgrade failed", "error", err.Error(), "username", session.Username)
		return
	}

	client := messaging.NewActivityClient(conn, session.Username)
	h.broadcaster.Register(client)
	h.logger.Activity().Info("Activity feed client connected", "username", session.Username, "clients", h.broadcaster.ClientCount())

	go client.WritePump()
	go client.ReadPump(h.broadcaster)
}
