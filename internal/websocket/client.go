package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Maximum time to wait for a pong from the peer.
	pongWait = 60 * time.Second

	// Ping interval; must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Write deadline for outbound frames.
	writeWait = 10 * time.Second

	// Maximum inbound frame size.
	maxMessageSize = 64 * 1024

	// Outbound buffer size per session.
	sendBufferSize = 256
)

// Client represents a single websocket session. UserID is empty for
// sessions that connected without a valid credential.
type Client struct {
	ID     string
	UserID string
	conn   *websocket.Conn
	Send   chan []byte
}

// NewClient creates a new Client for an upgraded connection.
func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// ReadPump reads frames from the connection and hands them to the handler.
// It returns when the peer disconnects or the connection errors.
func (c *Client) ReadPump(handler func(*Client, []byte)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client_id", c.ID).Msg("Unexpected websocket close")
			}
			return
		}
		handler(c, message)
	}
}

// WritePump writes queued frames to the connection and keeps it alive with
// pings. It returns when the Send channel is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
