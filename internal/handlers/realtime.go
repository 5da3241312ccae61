package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/middleware"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/internal/realtime"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/errors"
	"github.com/Adlai-byte/mikaza-sukaza-pms-sub004/pkg/response"
)

// RealtimeHandler upgrades authenticated clients onto the websocket hub.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// GET /api/ws
//
// Clients pick initial streams with ?streams=bookings,notifications; without
// the parameter they are subscribed to every stream their role allows.
// Subscriptions outside the allowed set are silently dropped by the hub.
func (h *RealtimeHandler) Serve(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	allowed := realtime.AllowedStreams(currentChecker(c))
	if len(allowed) == 0 {
		response.Error(c, errors.ErrForbidden)
		return
	}

	var streams []string
	if raw := strings.TrimSpace(c.Query("streams")); raw != "" {
		for _, stream := range strings.Split(raw, ",") {
			if stream = strings.TrimSpace(stream); stream != "" {
				streams = append(streams, stream)
			}
		}
	} else {
		for stream := range allowed {
			streams = append(streams, stream)
		}
	}

	h.hub.Serve(userID, streams, allowed, c.Writer, c.Request)
}
