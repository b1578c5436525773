package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Harsh-BH/dispatch/internal/hub"
)

// EventsHandler streams hub events as Server-Sent Events.
type EventsHandler struct {
	hub    *hub.Hub
	logger *zap.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(h *hub.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{hub: h, logger: logger}
}

// Stream handles GET /events. The first frame is always the ping event; the
// stream ends when the client goes away or the hub evicts the subscriber.
func (h *EventsHandler) Stream(c *gin.Context) {
	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	h.logger.Debug("SSE stream opened", zap.Uint64("subscriber_id", sub.ID()))

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("SSE client disconnected", zap.Uint64("subscriber_id", sub.ID()))
			return
		case evt, ok := <-sub.Events():
			if !ok {
				h.logger.Debug("SSE stream closed by hub", zap.Uint64("subscriber_id", sub.ID()))
				return
			}
			c.SSEvent(evt.Type, evt.Data)
			c.Writer.Flush()
		}
	}
}
