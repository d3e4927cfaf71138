package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xueqianLu/auctionhouse/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

const pingInterval = 5 * time.Second

// EventsLiveHandler streams new event records to websocket clients.
type EventsLiveHandler struct {
	log    *events.Log
	logger *zap.Logger
}

// NewEventsLiveHandler creates a new EventsLiveHandler.
func NewEventsLiveHandler(l *events.Log, logger *zap.Logger) *EventsLiveHandler {
	return &EventsLiveHandler{log: l, logger: logger}
}

// ServeHTTP implements the http.Handler interface.
func (h *EventsLiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Subscribing before the handshake means no record appended after the
	// client sees the 101 response can slip past the feed.
	ch, cancel := h.log.Subscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		// Upgrade has already written the error response.
		h.logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}

	done := make(chan struct{})

	// The write loop owns the connection. Closing it here unblocks the
	// read loop below when writing fails.
	go func() {
		defer close(done)
		defer conn.Close()
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case rec, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(rec); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
					return
				}
			}
		}
	}()

	// Reads serve only to notice the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	cancel()
	<-done
}
