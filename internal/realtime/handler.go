package realtime

import (
	"net/http"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/glimmer-social/backend/internal/common/crypto"
	"github.com/glimmer-social/backend/internal/common/logger"
)

var upgrader = gorillaWS.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades /ws requests and hands the connection to the hub.
func Handler(hub *Hub, ids crypto.IDGenerator, cfg Config, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warnf("websocket upgrade failed: %v", err)
			return
		}

		connID, err := ids.NewID()
		if err != nil {
			log.Errorf("failed to generate connection id: %v", err)
			conn.Close()
			return
		}

		client := NewClient(hub, conn, connID, cfg, log)
		hub.Register(client)
		client.Start()
	}
}
