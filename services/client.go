package services

import (
	"sync"

	"bingo-groups-backend/utils/logger"

	"github.com/gorilla/websocket"
)

type Client struct {
	userID  uint
	groupID uint
	conn    *websocket.Conn
	hub     *Hub
	send    chan []byte
	once    sync.Once
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// trySend pushes a payload without blocking. Close can race with a broadcast
// that snapshotted the watcher list before removal, so a send on the closed
// channel is absorbed here instead of killing the process.
func (c *Client) trySend(payload []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debugf("ws: user %d in group %d closed mid-broadcast", c.userID, c.groupID)
		}
	}()
	select {
	case c.send <- payload:
	default:
		logger.Warnf("ws: dropping state push to user %d in group %d", c.userID, c.groupID)
	}
}

// readPump drains the connection. Watchers send nothing meaningful; reading
// is what surfaces the close.
func (c *Client) readPump() {
	defer c.hub.removeClient(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debugf("ws: user %d left group %d watch", c.userID, c.groupID)
			} else {
				logger.Debugf("ws: user %d read error: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debugf("ws: user %d write error: %v", c.userID, err)
			return
		}
	}
}
