package messaging

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds one frame write.
	writeWait = 10 * time.Second
	// pongWait is how long a connection may stay silent before it is dropped.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize caps inbound frames; clients only listen.
	maxMessageSize = 512
	// sendBufferSize is the per-client frame buffer. Slow clients drop
	// frames once it fills instead of blocking the hub.
	sendBufferSize = 16
)

// ActivityClient represents a single connected dashboard client.
type ActivityClient struct {
	Conn     *websocket.Conn
	Username string
	Send     chan []byte
}

// NewActivityClient wraps an upgraded connection.
func NewActivityClient(conn *websocket.Conn, username string) *ActivityClient {
	return &ActivityClient{
		Conn:     conn,
		Username: username,
		Send:     make(chan []byte, sendBufferSize),
	}
}

// WritePump drains the send buffer to the socket and keeps the connection
// alive with pings. Runs as its own goroutine per client; exits when the hub
// closes the send channel or a write fails.
func (c *ActivityClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump discards inbound frames, refreshes the read deadline on pongs,
// and unregisters the client when the connection drops.
func (c *ActivityClient) ReadPump(b *ActivityBroadcaster) {
	defer func() {
		b.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
