package services

import (
	"encoding/json"
	"sync"

	"bingo-groups-backend/models"
	"bingo-groups-backend/utils/logger"
)

// Hub fans group state snapshots out to watching clients. Clients observe;
// every mutation still goes through the REST surface.
type Hub struct {
	mu      sync.RWMutex
	watches map[uint]map[*Client]bool // group id -> clients
}

func NewHub() *Hub {
	return &Hub{watches: make(map[uint]map[*Client]bool)}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if old := h.watches[c.groupID]; old != nil {
		for existing := range old {
			if existing.userID == c.userID {
				existing.Close()
				delete(old, existing)
			}
		}
	} else {
		h.watches[c.groupID] = make(map[*Client]bool)
	}
	h.watches[c.groupID][c] = true
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()

	logger.Infof("ws: user %d watching group %d", c.userID, c.groupID)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if clients, ok := h.watches[c.groupID]; ok {
		if clients[c] {
			delete(clients, c)
			c.Close()
		}
		if len(clients) == 0 {
			delete(h.watches, c.groupID)
		}
	}
	h.mu.Unlock()
}

// groupState is the per-viewer snapshot. YourCards carries only the viewing
// member's cards; nobody else's tickets cross the wire.
type groupState struct {
	GroupID       uint               `json:"group_id"`
	Name          string             `json:"name"`
	GameStarted   bool               `json:"game_started"`
	Mechanism     models.Mechanism   `json:"mechanism"`
	TimerSeconds  int                `json:"timer_seconds,omitempty"`
	CardLimit     int                `json:"card_limit,omitempty"`
	Members       []models.Member    `json:"members"`
	CalledNumbers []string           `json:"called_numbers"`
	CardCount     int                `json:"card_count"`
	YourCards     []models.BingoCard `json:"your_cards"`
	Prize         models.Prize       `json:"prize"`
}

// BroadcastGroup pushes the group's current state to every watcher. Slow
// clients get dropped messages, never a blocked engine.
func (h *Hub) BroadcastGroup(group *models.Group) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.watches[group.ID]))
	for c := range h.watches[group.ID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		state := groupState{
			GroupID:       group.ID,
			Name:          group.Name,
			GameStarted:   group.GameStarted,
			Mechanism:     group.Mechanism,
			TimerSeconds:  group.TimerSeconds,
			CardLimit:     group.CardLimit,
			Members:       append([]models.Member(nil), group.Members...),
			CalledNumbers: append([]string(nil), group.CalledNumbers...),
			CardCount:     len(group.BingoCards),
			YourCards:     group.CardsOwnedBy(c.userID),
			Prize:         group.PrizeValue(),
		}
		payload, err := json.Marshal(state)
		if err != nil {
			logger.Errorf("ws: marshal state for group %d: %v", group.ID, err)
			return
		}
		c.trySend(payload)
	}
}
