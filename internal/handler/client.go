package handler

import (
	"net/http"

	"geocam/internal/logger"

	"github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Viewers is the registry of screens receiving capture events.
type Viewers interface {
	Register(conn *websocket.Conn)
	Unregister(conn *websocket.Conn)
}

// ViewWebsocketHandler registers a screen to receive pipeline transitions
// and capture results until it disconnects.
func ViewWebsocketHandler(viewers Viewers, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		viewers.Register(connection)
		defer viewers.Unregister(connection)

		logger.Info("Viewer connected")

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Viewer disconnected normally")
				} else {
					logger.Error("Viewer disconnected with error: %v", err)
				}
				break
			}
		}
	}
}
