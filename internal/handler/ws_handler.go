package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/lokalo/lokalo-backend/internal/ws"
	"github.com/lokalo/lokalo-backend/pkg/jwt"
)

// WSHandler handles WebSocket connections for realtime notifications
type WSHandler struct {
	hub            *ws.Hub
	jwtManager     *jwt.Manager
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub, jwtManager *jwt.Manager, allowedOrigins string) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		jwtManager:     jwtManager,
		allowedOrigins: parseOrigins(allowedOrigins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// parseOrigins parses comma-separated origins string
func parseOrigins(origins string) []string {
	if origins == "" {
		return nil
	}
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// checkOrigin validates the request origin against allowed origins
func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // Same-origin requests don't have Origin header
	}

	// If no allowed origins configured, allow all (development mode)
	if len(h.allowedOrigins) == 0 {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}

	return false
}

// Connect handles GET /ws/notifications — WebSocket upgrade
// @Summary Subscribe to realtime notifications
// @Tags notifications
// @Param token query string false "access token (browsers cannot set headers on WebSocket requests)"
// @Router /ws/notifications [get]
func (h *WSHandler) Connect(c *gin.Context) {
	userID := h.authenticate(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "UNAUTHORIZED", "message": "Valid token required"}})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// authenticate resolves the connecting user from the token query parameter
// or the Authorization header.
func (h *WSHandler) authenticate(c *gin.Context) uint64 {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = after
		}
	}
	if token == "" {
		return 0
	}

	claims, err := h.jwtManager.VerifyAccessToken(token)
	if err != nil {
		return 0
	}
	return claims.UserID
}
