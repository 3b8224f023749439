package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/parlour/internal/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// Connection owns one websocket. The read pump feeds the hub; the write
// pump drains the send channel. Send never blocks the hub: a client too
// slow to drain its buffer is dropped.
type Connection struct {
	hub    *Hub
	conn   *websocket.Conn
	logger *log.Logger

	send      chan *protocol.Message
	closeOnce sync.Once

	mu     sync.Mutex
	userID string
	closed bool
}

// NewConnection wraps an upgraded websocket.
func NewConnection(hub *Hub, conn *websocket.Conn, logger *log.Logger) *Connection {
	return &Connection{
		hub:    hub,
		conn:   conn,
		logger: logger.WithPrefix("conn"),
		send:   make(chan *protocol.Message, sendBuffer),
	}
}

// Run starts both pumps and blocks until the read side closes.
func (c *Connection) Run() {
	go c.writePump()
	c.readPump()
}

// Send queues a message for delivery. Called under the hub lock, so it
// must not block.
func (c *Connection) Send(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("send buffer full, dropping connection", "user", c.userID)
		c.closeLocked()
	}
}

// UserID returns the registered user id, or empty before user-connect.
func (c *Connection) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// SetUserID records the id assigned at registration.
func (c *Connection) SetUserID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

func (c *Connection) readPump() {
	defer func() {
		c.close()
		c.hub.HandleDisconnect(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("read error", "error", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Debug("malformed message", "error", err)
			continue
		}
		c.hub.HandleMessage(c, &msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close shuts the send channel exactly once, which ends the write pump.
func (c *Connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Connection) closeLocked() {
	c.closeOnce.Do(func() {
		c.closed = true
		close(c.send)
	})
}
