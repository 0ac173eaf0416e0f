package realtime

import (
	"encoding/json"
	"time"

	gorillaWS "github.com/gorilla/websocket"

	"github.com/glimmer-social/backend/internal/common/constants"
	"github.com/glimmer-social/backend/internal/common/logger"
)

// Config carries the per-connection tuning knobs, loaded from the environment.
type Config struct {
	WriteWait   time.Duration
	PongWait    time.Duration
	PingPeriod  time.Duration
	MaxMsgSize  int64
	SendBufSize int
}

func DefaultConfig() Config {
	return Config{
		WriteWait:   constants.DefaultWebSocketWriteWait,
		PongWait:    constants.DefaultWebSocketPongWait,
		PingPeriod:  constants.DefaultWebSocketPingPeriod,
		MaxMsgSize:  constants.DefaultWebSocketMaxMsgSize,
		SendBufSize: constants.DefaultWebSocketSendBufSize,
	}
}

type Client struct {
	hub    *Hub
	conn   *gorillaWS.Conn
	connID string
	send   chan []byte
	cfg    Config
	log    *logger.Logger
}

func NewClient(hub *Hub, conn *gorillaWS.Conn, connID string, cfg Config, log *logger.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		connID: connID,
		send:   make(chan []byte, cfg.SendBufSize),
		cfg:    cfg,
		log:    log,
	}
}

func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetReadLimit(c.cfg.MaxMsgSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if gorillaWS.IsUnexpectedCloseError(err, gorillaWS.CloseGoingAway, gorillaWS.CloseAbnormalClosure) {
				c.log.Warnf("websocket read error conn_id=%s: %v", c.connID, err)
			}
			break
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.log.Warnf("websocket invalid event conn_id=%s: %v", c.connID, err)
			continue
		}

		c.hub.HandleEvent(c, &event)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(gorillaWS.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(gorillaWS.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
