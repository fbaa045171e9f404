package services

import (
	"encoding/json"
	"testing"
	"time"

	"bingo-groups-backend/models"
	"bingo-groups-backend/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hubFixture(t *testing.T) (*Engine, *Hub, *models.Group, models.Member, models.Member) {
	t.Helper()
	engine := NewEngine(repository.NewMemoryGroupStore())
	hub := NewHub()

	creator := models.Member{ID: 1, Name: "alice", Email: "alice@example.com"}
	player := models.Member{ID: 2, Name: "bob", Email: "bob@example.com"}
	group, err := engine.CreateGroup(creator, CreateGroupParams{Name: "watched room"})
	require.NoError(t, err)
	_, err = engine.Join(group.ID, player)
	require.NoError(t, err)
	return engine, hub, group, creator, player
}

// watch registers a client without a live connection; the send channel is all
// a broadcast touches.
func watch(hub *Hub, groupID, userID uint) *Client {
	c := &Client{userID: userID, groupID: groupID, hub: hub, send: make(chan []byte, 4)}
	if hub.watches[groupID] == nil {
		hub.watches[groupID] = make(map[*Client]bool)
	}
	hub.watches[groupID][c] = true
	return c
}

func TestBroadcastSurvivesClosedClient(t *testing.T) {
	_, hub, group, creator, player := hubFixture(t)

	closed := watch(hub, group.ID, creator.ID)
	close(closed.send)
	live := watch(hub, group.ID, player.ID)

	require.NotPanics(t, func() { hub.BroadcastGroup(group) })

	select {
	case payload := <-live.send:
		assert.NotEmpty(t, payload, "live watcher must still get the push")
	default:
		t.Fatal("live watcher got nothing")
	}
}

func TestBroadcastScopesCardsToViewer(t *testing.T) {
	engine, hub, group, creator, player := hubFixture(t)

	_, err := engine.AddCards(group.ID, player, []CardSubmission{{
		Numbers: map[string][]int{"B": {46}, "I": {16}, "N": {31}, "G": {1}, "O": {61}},
	}})
	require.NoError(t, err)

	creatorClient := watch(hub, group.ID, creator.ID)
	playerClient := watch(hub, group.ID, player.ID)

	current, err := engine.Group(group.ID)
	require.NoError(t, err)
	hub.BroadcastGroup(current)

	var creatorState, playerState groupState
	require.NoError(t, json.Unmarshal(<-creatorClient.send, &creatorState))
	require.NoError(t, json.Unmarshal(<-playerClient.send, &playerState))

	assert.Empty(t, creatorState.YourCards, "creator holds no cards")
	require.Len(t, playerState.YourCards, 1)
	assert.Equal(t, player.ID, playerState.YourCards[0].UserID)
	assert.Equal(t, 1, playerState.CardCount)
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	_, hub, group, creator, _ := hubFixture(t)

	stuck := &Client{userID: creator.ID, groupID: group.ID, hub: hub, send: make(chan []byte)}
	hub.watches[group.ID] = map[*Client]bool{stuck: true}

	// An unbuffered channel with no reader must never block the broadcast.
	done := make(chan struct{})
	go func() {
		hub.BroadcastGroup(group)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on an unready client")
	}
}
