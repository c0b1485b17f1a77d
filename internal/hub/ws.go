package hub

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The dashboard is served from arbitrary origins.
	CheckOrigin: func(*http.Request) bool { return true },
}

// HandleWS upgrades the connection, sends the current snapshot immediately,
// then pumps every broadcast to the client until it disconnects. A write
// failure drops only this subscriber.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id, ch := h.Subscribe()
	defer h.Unsubscribe(id)
	slog.Info("client subscribed to live stream", "subscriber_id", id)

	// New clients never wait for the next tick.
	msg, err := h.snapshotMessage(r.Context())
	if err != nil {
		slog.Error("error building initial snapshot", "subscriber_id", id, "error", err)
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		slog.Info("client disconnected from live stream", "subscriber_id", id, "error", err)
		return
	}

	// Reads are discarded; the read loop only detects disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			slog.Info("client disconnected from live stream", "subscriber_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.Info("dropping live subscriber", "subscriber_id", id, "error", err)
				return
			}
		}
	}
}
