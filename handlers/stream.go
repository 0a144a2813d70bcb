package handlers

import (
	"context"
	"time"

	"homehub/middleware"
	"homehub/stream"
	"homehub/utils"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StreamHandler serves the live update WebSocket.
type StreamHandler struct {
	Hub *stream.Hub
}

const (
	streamBuffer     = 64
	streamWriteLimit = 10 * time.Second
)

// StreamHandlerFunc handles GET /api/stream. Events targeted at a
// specific member are delivered only to that member's sockets;
// untargeted events broadcast to everyone.
func (h *StreamHandler) StreamHandlerFunc(c *gin.Context) {
	userID, _ := middleware.CurrentActor(c)

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		utils.GetLogger().Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	sub := h.Hub.Subscribe(streamBuffer)
	defer h.Hub.Unsubscribe(sub)

	ctx := c.Request.Context()

	// Drain reads so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-sub:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if ev.UserID != "" && ev.UserID != userID {
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, streamWriteLimit)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
