package system

import (
	"go-syncbridge/internal/features/sync"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// WebSocketController streams live sync events (progress, log, stats) to
// connected clients as JSON frames.
type WebSocketController struct {
	bus    *sync.Broadcaster
	logger *zap.Logger
}

func NewWebSocketController(syncService sync.SyncService, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		bus:    syncService.Events(),
		logger: logger,
	}
}

func (h *WebSocketController) HandleSyncStream(c *websocket.Conn) {
	events, cancel := h.bus.Subscribe()
	defer cancel()

	// Drain the read side so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(ev); err != nil {
				h.logger.Debug("websocket write failed, dropping client", zap.Error(err))
				return
			}
		}
	}
}
