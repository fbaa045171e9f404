package services

import (
	"net/http"
	"strconv"

	"bingo-groups-backend/middleware"
	"bingo-groups-backend/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchGroup upgrades the connection and subscribes the authenticated caller
// to the group's state pushes. An initial snapshot goes out immediately so a
// reconnecting client does not wait for the next mutation.
func WatchGroup(engine *Engine, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
			return
		}

		user := middleware.CurrentUser(c)
		group, err := engine.Group(uint(groupID))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		if !group.IsMember(user.ID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this group"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("ws: upgrade for group %d: %v", groupID, err)
			return
		}

		client := &Client{
			userID:  user.ID,
			groupID: uint(groupID),
			conn:    conn,
			hub:     hub,
			send:    make(chan []byte, 32),
		}
		hub.addClient(client)
		hub.BroadcastGroup(group)
	}
}
